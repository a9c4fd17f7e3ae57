package hash

import "golang.org/x/crypto/bcrypt"

// Cost is lowered by tests.
var Cost = bcrypt.DefaultCost

func HashSecret(secret string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(secret), Cost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

// CheckSecret compares in constant time.
func CheckSecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
