package resp

import (
	v1 "roombook/pkg/api/v1"
	"roombook/pkg/constraints"

	"github.com/gin-gonic/gin"
)

// OK writes a success envelope whose code mirrors the HTTP status.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, v1.Envelope[any]{Code: status, Message: constraints.MessageSuccess, Data: data})
}

// Fail writes a failure envelope carrying msg as its data and aborts the chain.
func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, v1.Envelope[string]{Code: status, Message: constraints.MessageFail, Data: msg})
}
