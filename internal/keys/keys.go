package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/crypto/blake2b"
)

var log = logging.Logger("keys")

const (
	// SchemeFlagEd25519 Ed25519 方案标志字节
	// 与 Sui 账户地址规范一致：地址 = blake2b-256(flag || pubkey)
	SchemeFlagEd25519 byte = 0x00

	// SeedLength Ed25519 种子长度
	SeedLength = 32

	// AddressLength 链地址长度（32 字节摘要）
	AddressLength = 32
)

var (
	ErrUnsupportedScheme = errors.New("unsupported signature scheme")
	ErrInvalidKeystring  = errors.New("invalid keystring")
)

// Keypair Ed25519 签名密钥对及其派生地址
type Keypair struct {
	priv    ed25519.PrivateKey
	address string
}

// Generate 生成新的 Ed25519 密钥对
// 种子来自 crypto/rand 的 32 字节熵
func Generate() (*Keypair, error) {
	seed := make([]byte, SeedLength)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		log.Errorf("Generate: failed to read entropy: %v", err)
		return nil, fmt.Errorf("failed to generate random seed: %w", err)
	}
	return fromSeed(seed)
}

// fromSeed 由种子重建密钥对并派生地址
func fromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != SeedLength {
		return nil, ErrInvalidKeystring
	}
	priv := ed25519.NewKeyFromSeed(seed)
	addr, err := DeriveAddress(priv.Public().(ed25519.PublicKey), SchemeFlagEd25519)
	if err != nil {
		return nil, err
	}
	return &Keypair{priv: priv, address: addr}, nil
}

// DeriveAddress 由公钥派生链地址
// 地址 = "0x" + hex(blake2b-256(flag_byte || pubkey_bytes))
// 该派生是纯函数：相同输入永远得到相同地址，
// 字节布局必须与目标链发布的账户地址规范逐位一致
func DeriveAddress(pub ed25519.PublicKey, flag byte) (string, error) {
	if flag != SchemeFlagEd25519 {
		return "", ErrUnsupportedScheme
	}
	if len(pub) != ed25519.PublicKeySize {
		return "", fmt.Errorf("invalid public key length: %d", len(pub))
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	h.Write([]byte{flag})
	h.Write(pub)
	digest := h.Sum(nil)

	return "0x" + hex.EncodeToString(digest), nil
}

// Address 返回密钥对的链地址
func (kp *Keypair) Address() string { return kp.address }

// Public 返回公钥
func (kp *Keypair) Public() ed25519.PublicKey {
	return kp.priv.Public().(ed25519.PublicKey)
}

// Sign 对消息摘要签名
func (kp *Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(kp.priv, msg)
}

// Keystring 序列化私钥材料
// 格式：base64(flag_byte || 32_raw_seed_bytes)，用于存储和重建签名密钥
func (kp *Keypair) Keystring() string {
	buf := make([]byte, 0, 1+SeedLength)
	buf = append(buf, SchemeFlagEd25519)
	buf = append(buf, kp.priv.Seed()...)
	return base64.StdEncoding.EncodeToString(buf)
}

// ParseKeystring 从序列化形式重建签名密钥对
func ParseKeystring(s string) (*Keypair, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		log.Errorf("ParseKeystring: base64 decode failed: %v", err)
		return nil, ErrInvalidKeystring
	}
	if len(raw) != 1+SeedLength {
		log.Errorf("ParseKeystring: unexpected keystring length %d", len(raw))
		return nil, ErrInvalidKeystring
	}
	if raw[0] != SchemeFlagEd25519 {
		log.Errorf("ParseKeystring: unsupported scheme flag 0x%02x", raw[0])
		return nil, ErrUnsupportedScheme
	}
	return fromSeed(raw[1:])
}
