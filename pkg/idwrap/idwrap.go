package idwrap

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDWrap is a ULID-backed identifier. The zero value is invalid; mint ids
// with NewNow so creation time rides inside the id itself.
type IDWrap struct {
	ulid ulid.ULID
}

func New(u ulid.ULID) IDWrap {
	return IDWrap{ulid: u}
}

func NewNow() IDWrap {
	return IDWrap{ulid: ulid.Make()}
}

func NewText(s string) (IDWrap, error) {
	u, err := ulid.Parse(s)
	if err != nil {
		return IDWrap{}, err
	}
	return IDWrap{ulid: u}, nil
}

func NewTextMust(s string) IDWrap {
	u, err := ulid.Parse(s)
	if err != nil {
		panic(err)
	}
	return IDWrap{ulid: u}
}

func NewFromBytes(data []byte) (IDWrap, error) {
	var u ulid.ULID
	err := u.UnmarshalBinary(data)
	return IDWrap{ulid: u}, err
}

func (u IDWrap) String() string {
	return u.ulid.String()
}

func (u IDWrap) Bytes() []byte {
	return u.ulid[:]
}

func (u IDWrap) IsZero() bool {
	return u.ulid == ulid.ULID{}
}

func (u IDWrap) Compare(id IDWrap) int {
	return u.ulid.Compare(id.ulid)
}

// Time recovers the creation timestamp encoded in the id.
func (u IDWrap) Time() time.Time {
	return time.UnixMilli(int64(u.ulid.Time()))
}

func (u IDWrap) MarshalText() ([]byte, error) {
	return u.ulid.MarshalText()
}

func (u *IDWrap) UnmarshalText(data []byte) error {
	return u.ulid.UnmarshalText(data)
}

// SQL driver value
func (u IDWrap) Value() (driver.Value, error) {
	return u.ulid.Value()
}

func (u *IDWrap) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return u.ulid.UnmarshalBinary(v)
	case string:
		return u.ulid.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("idwrap: cannot scan %T", value)
	}
}
