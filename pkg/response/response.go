package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 错误码
const (
	CodeSuccess = 0

	CodeTokenInvalid = 10003
	CodeTokenExpired = 10004
	CodeForbidden    = 10005

	CodeInvalidParams = 11002
	CodeRoomNotFound  = 20001

	CodeServerError = 50000
	CodeDBError     = 50001
)

var codeMessages = map[int]string{
	CodeSuccess:       "success",
	CodeTokenInvalid:  "Token 无效",
	CodeTokenExpired:  "Token 已过期",
	CodeForbidden:     "无权访问",
	CodeInvalidParams: "参数校验失败",
	CodeRoomNotFound:  "房间不存在",
	CodeServerError:   "服务器内部错误",
	CodeDBError:       "数据库错误",
}

var codeStatus = map[int]int{
	CodeTokenInvalid:  http.StatusUnauthorized,
	CodeTokenExpired:  http.StatusUnauthorized,
	CodeForbidden:     http.StatusForbidden,
	CodeInvalidParams: http.StatusBadRequest,
	CodeRoomNotFound:  http.StatusNotFound,
	CodeServerError:   http.StatusInternalServerError,
	CodeDBError:       http.StatusInternalServerError,
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应，HTTP 状态码由错误码决定
func Error(c *gin.Context, code int) {
	message := codeMessages[code]
	if message == "" {
		message = "unknown error"
	}
	status := codeStatus[code]
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, Response{
		Code:    code,
		Message: message,
	})
}
