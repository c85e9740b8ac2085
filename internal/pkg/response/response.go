package response

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// 错误码定义
const (
	CodeSuccess         = 0
	CodeParamError      = 1000
	CodeAuthFailed      = 1001
	CodeDuplicateAction = 1005
	CodeServerError     = 5000
)

// 错误码对应的默认消息
var codeMessages = map[int]string{
	CodeSuccess:         "success",
	CodeParamError:      "Invalid request",
	CodeAuthFailed:      "Please login first",
	CodeDuplicateAction: "Already done",
	CodeServerError:     "Internal server error",
}

// 错误码对应的 HTTP 状态
var codeStatus = map[int]int{
	CodeParamError:      http.StatusBadRequest,
	CodeAuthFailed:      http.StatusUnauthorized,
	CodeDuplicateAction: http.StatusConflict,
	CodeServerError:     http.StatusInternalServerError,
}

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Notice 表单类接口的提示消息，仍返回 200
func Notice(c *gin.Context, code int, message string) {
	if message == "" {
		message = codeMessages[code]
	}
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// Redirect 302 跳转，message 作为查询参数带回页面
func Redirect(c *gin.Context, path, message string) {
	if message != "" {
		path = path + "?message=" + url.QueryEscape(message)
	}
	c.Redirect(http.StatusFound, path)
}

// Status 错误码对应的 HTTP 状态，未知码按 500 处理
func Status(code int) int {
	if code == CodeSuccess {
		return http.StatusOK
	}
	if s, ok := codeStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	if message == "" {
		message = codeMessages[code]
	}
	c.JSON(Status(code), Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// ParamError 参数错误
func ParamError(c *gin.Context, message string) {
	Error(c, CodeParamError, message)
}

// ServerError 服务器错误
func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}
