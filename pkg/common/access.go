package common

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"

	"github.com/matst80/slask-catalog/pkg/types"
)

// AccessClaims is what the portal's identity provider puts in the bearer token.
type AccessClaims struct {
	Departments []string `json:"departments,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

type AccessPolicyParser struct {
	secret []byte
}

func NewAccessPolicyParser(secret string) *AccessPolicyParser {
	return &AccessPolicyParser{secret: []byte(secret)}
}

func (p *AccessPolicyParser) Parse(token string) (types.AccessPolicy, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return types.AccessPolicy{}, err
	}
	return types.AccessPolicy{
		Subject:     claims.Subject,
		Departments: claims.Departments,
		Roles:       claims.Roles,
	}, nil
}

// FromRequest reads the bearer token. Missing or invalid tokens give the
// anonymous policy, which only sees public content.
func (p *AccessPolicyParser) FromRequest(r *http.Request) types.AccessPolicy {
	if p == nil || len(p.secret) == 0 {
		return types.AccessPolicy{}
	}
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return types.AccessPolicy{}
	}
	policy, err := p.Parse(token)
	if err != nil {
		log.Debugf("ignoring bearer token: %v", err)
		return types.AccessPolicy{}
	}
	return policy
}

// Sign issues a token for the given policy, used by tests and local tooling.
func (p *AccessPolicyParser) Sign(policy types.AccessPolicy) (string, error) {
	claims := AccessClaims{
		Departments: policy.Departments,
		Roles:       policy.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: policy.Subject,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
