package handlers

import (
	"errors"

	"github.com/kucun-next/internal/http/response"
	"github.com/kucun-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SignInRequest 登录请求
type SignInRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	CaptchaID  string `json:"captcha_id"`
	CaptchaVal string `json:"captcha_value"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// SignIn 操作员登录
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaVal); err != nil {
		respondError(c, response.CodeBadRequest, "验证码错误", nil)
		return
	}

	result, err := h.AuthService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "邮箱格式不正确", nil)
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrWrongPassword):
			// 不区分账号不存在与密码错误
			respondError(c, response.CodeUnauthorized, "邮箱或密码错误", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeUnauthorized, "账号已停用", nil)
		case errors.Is(err, service.ErrSignInTimeout):
			respondError(c, response.CodeInternal, "登录超时，请稍后重试", err)
		default:
			respondError(c, response.CodeInternal, "登录失败", err)
		}
		return
	}
	response.Success(c, result)
}

// SignOut 操作员登出
func (h *Handler) SignOut(c *gin.Context) {
	operatorID, ok := contextOperatorID(c)
	if !ok {
		return
	}
	h.AuthService.SignOut(operatorID)
	response.SuccessWithMsg(c, "已退出登录", nil)
}

// GetProfile 当前操作员信息
func (h *Handler) GetProfile(c *gin.Context) {
	operatorID, ok := contextOperatorID(c)
	if !ok {
		return
	}
	operator, err := h.AuthService.GetOperator(operatorID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "账号不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "查询失败", err)
		return
	}
	response.Success(c, operator)
}

// ChangePassword 修改密码
func (h *Handler) ChangePassword(c *gin.Context) {
	operatorID, ok := contextOperatorID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	err := h.AuthService.ChangePassword(operatorID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooShort):
			respondError(c, response.CodeBadRequest, "新密码长度至少 6 位", nil)
		case errors.Is(err, service.ErrWrongPassword):
			respondError(c, response.CodeBadRequest, "原密码错误", nil)
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "账号不存在", nil)
		default:
			respondError(c, response.CodeInternal, "修改失败", err)
		}
		return
	}
	response.SuccessWithMsg(c, "密码已修改", nil)
}

// GetCaptcha 获取登录验证码
func (h *Handler) GetCaptcha(c *gin.Context) {
	if !h.CaptchaService.Enabled() {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	id, image, err := h.CaptchaService.Generate()
	if err != nil {
		respondError(c, response.CodeInternal, "验证码生成失败", err)
		return
	}
	response.Success(c, gin.H{
		"enabled": true,
		"id":      id,
		"image":   image,
	})
}
