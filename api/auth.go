package api

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const AccessTokenCookie = "access_token"

type AccessClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ParseAndValidateJWT 解析並驗證外部登入服務簽發的存取權杖
// 簽章演算法固定為 Ed25519，簽發者與受眾不符一律視為無效
func ParseAndValidateJWT(tokenString string, publicKey ed25519.PublicKey, issuer, audience string) (*AccessClaims, error) {
	const op = "ParseAndValidateJWT"
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return publicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%s: token is invalid", op)
	}
	return token.Claims.(*AccessClaims), nil
}

// callerID 從請求中解析呼叫者身分
// 權杖來自 cookie 或 Authorization: Bearer；沒有權杖時回傳 uuid.Nil（匿名瀏覽者）
func (impl *ServerImpl) callerID(c *gin.Context) (uuid.UUID, error) {
	tokenString, err := c.Cookie(AccessTokenCookie)
	if err != nil || tokenString == "" {
		authz := c.GetHeader("Authorization")
		if after, ok := strings.CutPrefix(authz, "Bearer "); ok {
			tokenString = after
		}
	}
	if tokenString == "" {
		return uuid.Nil, nil
	}

	claims, err := ParseAndValidateJWT(tokenString, impl.config.Auth.PublicKey, impl.config.Auth.Issuer, impl.config.Auth.Audience)
	if err != nil {
		return uuid.Nil, err
	}
	callerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject in access token: %w", err)
	}
	return callerID, nil
}
