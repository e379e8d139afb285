package security

import "golang.org/x/crypto/bcrypt"

// APIKeyHasher checks the shared key device clients send in X-Api-Key.
// Only the bcrypt hash of the key is kept in configuration.
type APIKeyHasher struct{}

func NewAPIKeyHasher() *APIKeyHasher {
	return &APIKeyHasher{}
}

func (h *APIKeyHasher) Hash(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	return string(bytes), err
}

func (h *APIKeyHasher) Compare(hash, key string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
}
