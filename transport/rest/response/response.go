package response

import "github.com/gin-gonic/gin"

// Response - envelope shared by every API reply.
type Response struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  any  `json:"extras"`
}

func NewResponse(success bool, code int, extras any) Response {
	return Response{
		Success: success,
		Code:    code,
		Extras:  extras,
	}
}

// Success - writes extras with the given status.
func Success(c *gin.Context, code int, extras any) {
	c.JSON(code, NewResponse(true, code, extras))
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, NewResponse(false, code, gin.H{"message": message}))
}
