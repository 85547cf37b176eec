package internal

import (
	"encoding/base32"

	"github.com/google/uuid"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz156789"

// FieldIDPrefix marks ids minted for fields.
const FieldIDPrefix = "field-"

var customEncoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

func EncodeToBase32(data []byte) string {
	return customEncoding.EncodeToString(data)
}

func EncodeUUIDToBase32(id uuid.UUID) string {
	return EncodeToBase32(id[:])
}

func DecodeFromBase32(s string) ([]byte, error) {
	return customEncoding.DecodeString(s)
}

func DecodeBase32ToUUID(s string) (uuid.UUID, error) {
	data, err := DecodeFromBase32(s)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.FromBytes(data)
}

// IDGenerator mints the ids of forms, fields and options.
type IDGenerator interface {
	FormID() string
	FieldID() string
	OptionID() string
}

// UUIDGenerator encodes random UUIDs with the lowercase base32 alphabet, so
// ids are URL safe and 26 characters long.
type UUIDGenerator struct{}

func (UUIDGenerator) FormID() string {
	return EncodeUUIDToBase32(uuid.New())
}

func (UUIDGenerator) FieldID() string {
	return FieldIDPrefix + EncodeUUIDToBase32(uuid.New())
}

func (UUIDGenerator) OptionID() string {
	return EncodeUUIDToBase32(uuid.New())
}
