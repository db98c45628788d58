package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword 生成加盐的单向密码摘要。
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword 校验明文密码与摘要是否匹配。
// 摘要格式非法或不匹配时一律返回 false，不抛出错误。
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
