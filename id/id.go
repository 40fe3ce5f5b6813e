package id

import (
	"strings"

	"github.com/rs/xid"
)

// tempPrefix marks ids minted locally for optimistic entries. The server
// never hands out ids with this prefix.
const tempPrefix = "tmp_"

func Generate() string {
	return xid.New().String()
}

func GenerateTemp() string {
	return tempPrefix + Generate()
}

func IsTemp(s string) bool {
	rest, ok := strings.CutPrefix(s, tempPrefix)
	if !ok {
		return false
	}
	id, err := xid.FromString(rest)
	if err != nil {
		return false
	}
	return !id.IsNil() && !id.IsZero()
}
