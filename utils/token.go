package utils

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const tokenTTL = 24 * time.Hour

// revoked token IDs live until the token itself would have expired
var blacklistedTokens = cache.New(tokenTTL, time.Hour)

func BlacklistToken(tokenID string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	blacklistedTokens.Set(tokenID, struct{}{}, ttl)
}

func IsTokenBlacklisted(tokenID string) bool {
	_, found := blacklistedTokens.Get(tokenID)
	return found
}
