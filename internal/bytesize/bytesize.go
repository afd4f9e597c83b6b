// Package bytesize parses human-readable byte sizes such as "10Mi" or "64KB"
// used by the server configuration.
package bytesize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes. It unmarshals from plain numbers or from a
// number with a decimal (K, M, G, T) or binary (Ki, Mi, Gi, Ti) suffix, with
// an optional trailing "B".
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000 * B
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024 * B
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

var pattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*([kmgt]i?)?b?\s*$`)

var multipliers = map[string]ByteSize{
	"":   B,
	"k":  KB,
	"m":  MB,
	"g":  GB,
	"t":  TB,
	"ki": KiB,
	"mi": MiB,
	"gi": GiB,
	"ti": TiB,
}

// Parse parses s into a ByteSize.
func Parse(s string) (ByteSize, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("empty byte size")
	}
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}
	mult := multipliers[strings.ToLower(m[2])]

	if strings.Contains(m[1], ".") {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
		}
		return ByteSize(f * float64(mult)), nil
	}

	n, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	return ByteSize(n) * mult, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// MarshalYAML writes the size in its human readable form.
func (b ByteSize) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// String renders the size with the largest binary unit that divides it
// exactly, so the output parses back to the same value.
func (b ByteSize) String() string {
	units := []struct {
		size   ByteSize
		suffix string
	}{{TiB, "Ti"}, {GiB, "Gi"}, {MiB, "Mi"}, {KiB, "Ki"}}
	for _, u := range units {
		if b >= u.size && b%u.size == 0 {
			return strconv.FormatUint(uint64(b/u.size), 10) + u.suffix
		}
	}
	return strconv.FormatUint(uint64(b), 10)
}

// Int64 returns the size as an int64.
func (b ByteSize) Int64() int64 {
	return int64(b)
}

// Int returns the size as an int.
func (b ByteSize) Int() int {
	return int(b)
}
