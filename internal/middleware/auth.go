package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"sudooom.im.mahjong/pkg/response"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)

// RoleAdmin 管理接口要求的角色
const RoleAdmin = "admin"

// Claims 管理 Token 声明
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService 签发与校验管理 Token
type TokenService struct {
	secretKey []byte
	issuer    string
}

// NewTokenService 创建 Token 服务
func NewTokenService(secretKey, issuer string) *TokenService {
	return &TokenService{secretKey: []byte(secretKey), issuer: issuer}
}

// Generate 签发 Token
func (s *TokenService) Generate(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

// Validate 校验 Token
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// AdminAuth 管理接口认证中间件
func AdminAuth(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Error(c, response.CodeTokenInvalid)
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				response.Error(c, response.CodeTokenExpired)
			} else {
				response.Error(c, response.CodeTokenInvalid)
			}
			return
		}
		if claims.Role != RoleAdmin {
			response.Error(c, response.CodeForbidden)
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}

// extractToken 从 Authorization header 提取 token
func extractToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

// GetSubject 从 context 获取 Token 主体
func GetSubject(c *gin.Context) string {
	return c.GetString("subject")
}
