package http

import "net/http"

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	CodeSuccess      = 0
	CodeError        = -1
	CodeInvalidParam = 10001
	CodeNotFound     = 10004
	CodeServerError  = 10005
	CodeUnavailable  = 10006 // 服务忙或桌子已关闭
	CodeRuleReject   = 20000 // 规则拒绝，message 为规则错误码
)

const (
	MsgSuccess      = "success"
	MsgInvalidParam = "invalid parameters"
	MsgNotFound     = "not found"
	MsgServerError  = "internal server error"
)

func NewResponse(code int, message string, data any) *Response {
	return &Response{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, NewResponse(CodeSuccess, MsgSuccess, data))
}

// ErrorWithCode 业务错误仍返回 200，由 code 区分
func (c *Context) ErrorWithCode(code int, message string) {
	c.JSON(http.StatusOK, NewResponse(code, message, nil))
}

// Reject 规则拒绝，附带原始错误描述
func (c *Context) Reject(ruleCode string, detail string) {
	c.JSON(http.StatusOK, NewResponse(CodeRuleReject, ruleCode, map[string]string{"detail": detail}))
}

func (c *Context) BadRequest(message string) {
	if message == "" {
		message = MsgInvalidParam
	}
	c.JSON(http.StatusBadRequest, NewResponse(CodeInvalidParam, message, nil))
}

func (c *Context) NotFound(message string) {
	if message == "" {
		message = MsgNotFound
	}
	c.JSON(http.StatusNotFound, NewResponse(CodeNotFound, message, nil))
}

func (c *Context) Unavailable(message string) {
	c.JSON(http.StatusServiceUnavailable, NewResponse(CodeUnavailable, message, nil))
}

func (c *Context) InternalServerError(message string) {
	if message == "" {
		message = MsgServerError
	}
	c.JSON(http.StatusInternalServerError, NewResponse(CodeServerError, message, nil))
}
