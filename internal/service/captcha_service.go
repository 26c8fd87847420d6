package service

import (
	"errors"

	"github.com/kucun-next/internal/config"

	"github.com/mojocn/base64Captcha"
)

// ErrCaptchaMismatch 验证码错误或已过期
var ErrCaptchaMismatch = errors.New("captcha mismatch")

// CaptchaService 登录图片验证码服务（可在配置中关闭）
type CaptchaService struct {
	enabled bool
	captcha *base64Captcha.Captcha
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(cfg *config.Config) *CaptchaService {
	c := cfg.Captcha
	width, height, length := c.Width, c.Height, c.Length
	if width <= 0 {
		width = 240
	}
	if height <= 0 {
		height = 80
	}
	if length <= 0 {
		length = 4
	}

	driver := base64Captcha.NewDriverDigit(height, width, length, 0.7, 80)
	store := base64Captcha.NewMemoryStore(base64Captcha.GCLimitNumber, base64Captcha.Expiration)
	return &CaptchaService{
		enabled: c.Enabled,
		captcha: base64Captcha.NewCaptcha(driver, store),
	}
}

// Enabled 验证码是否启用
func (s *CaptchaService) Enabled() bool {
	return s.enabled
}

// Generate 生成一张验证码图片，返回 id 与 base64 图片数据
func (s *CaptchaService) Generate() (id, b64s string, err error) {
	id, b64s, _, err = s.captcha.Generate()
	return id, b64s, err
}

// Verify 校验验证码（验证后即失效）。未启用时直接放行。
func (s *CaptchaService) Verify(id, answer string) error {
	if !s.enabled {
		return nil
	}
	if id == "" || answer == "" {
		return ErrCaptchaMismatch
	}
	if !s.captcha.Verify(id, answer, true) {
		return ErrCaptchaMismatch
	}
	return nil
}
