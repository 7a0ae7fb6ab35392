// Package vault cifra y descifra las credenciales Factus de cada tenant.
//
// El formato es Fernet (versión 0x80, base64url) con llave derivada por
// PBKDF2-HMAC-SHA256 a partir de ENCRYPTION_KEY y una sal fija, de modo que
// el mismo secreto produce siempre la misma llave tras un reinicio y los
// valores ya guardados en la base siguen siendo legibles.
package vault

import (
	"crypto/sha256"
	"errors"
	"strings"

	"github.com/fernet/fernet-go"
	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfSalt       = "gastro-pos-pro-salt-v1"
	kdfIterations = 100_000
	kdfKeyLen     = 32

	// Todo token Fernet empieza con la versión 0x80 + timestamp, que en base64url es "gAAAAA".
	tokenPrefix    = "gAAAAA"
	minTokenLength = 50
)

var (
	ErrEmptySecret = errors.New("vault: secreto de cifrado vacío")
	ErrEncryption  = errors.New("vault: no se pudo cifrar el valor")
	ErrDecryption  = errors.New("vault: texto cifrado inválido o cifrado con otra llave")
)

// Vault guarda la llave derivada; es seguro para uso concurrente (solo lectura tras New).
type Vault struct {
	key  *fernet.Key
	keys []*fernet.Key
}

// New deriva la llave una sola vez. La instancia se crea en el arranque y se inyecta
// a quien la necesite.
func New(secret string) (*Vault, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	var k fernet.Key
	copy(k[:], pbkdf2.Key([]byte(secret), []byte(kdfSalt), kdfIterations, kdfKeyLen, sha256.New))
	return &Vault{key: &k, keys: []*fernet.Key{&k}}, nil
}

// Encrypt cifra plaintext. La cadena vacía se devuelve tal cual.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	tok, err := fernet.EncryptAndSign([]byte(plaintext), v.key)
	if err != nil {
		return "", errors.Join(ErrEncryption, err)
	}
	return string(tok), nil
}

// Decrypt descifra un token producido por Encrypt (o por el sistema legado con la misma llave).
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	// ttl 0: las credenciales no expiran
	msg := fernet.VerifyAndDecrypt([]byte(ciphertext), 0, v.keys)
	if msg == nil {
		return "", ErrDecryption
	}
	return string(msg), nil
}

// IsEncrypted reconoce el prefijo fijo del token y su longitud mínima.
// Sirve para tolerar filas con credenciales aún en texto plano durante la migración.
func (v *Vault) IsEncrypted(value string) bool {
	return len(value) > minTokenLength && strings.HasPrefix(value, tokenPrefix)
}

// DecryptIfNeeded descifra value solo si parece cifrado.
func (v *Vault) DecryptIfNeeded(value string) (string, error) {
	if !v.IsEncrypted(value) {
		return value, nil
	}
	return v.Decrypt(value)
}
