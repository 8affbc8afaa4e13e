// Copyright 2019-2024 Xu Ruibo (hustxurb@163.com) and Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package units holds the human-readable size and duration values used in
// configuration files and stats output.
package units

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	_ = 1 << (10 * iota)
	KB
	MB
	GB
	TB
	PB
)

var (
	bytesRegexp = regexp.MustCompile(`^\s*(\-?[\d\.]+)\s*([kmgtp]?b|[bkmgtp]|)\s*$`)
	durRegexp   = regexp.MustCompile(`^\s*(\-?[\d\.]+)\s*([a-z]+|)\s*$`)
	digitsOnly  = regexp.MustCompile(`^\-?\d+$`)
)

var (
	ErrBadBytes     = errors.New("invalid bytes value")
	ErrBadBytesUnit = errors.New("invalid bytes unit")
	ErrBadDuration  = errors.New("invalid duration value")
)

// Bytes is a byte count that reads and writes with binary-unit suffixes in
// TOML ("64mb", "4kb", plain digits for exact counts).
type Bytes int64

func (b Bytes) Int64() int64 {
	return int64(b)
}

func (b Bytes) AsInt() int {
	return int(b)
}

func (b Bytes) MarshalText() ([]byte, error) {
	if b == 0 {
		return []byte("0"), nil
	}
	abs := int64(b)
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs%PB == 0:
		return []byte(fmt.Sprintf("%dpb", b.Int64()/PB)), nil
	case abs%TB == 0:
		return []byte(fmt.Sprintf("%dtb", b.Int64()/TB)), nil
	case abs%GB == 0:
		return []byte(fmt.Sprintf("%dgb", b.Int64()/GB)), nil
	case abs%MB == 0:
		return []byte(fmt.Sprintf("%dmb", b.Int64()/MB)), nil
	case abs%KB == 0:
		return []byte(fmt.Sprintf("%dkb", b.Int64()/KB)), nil
	default:
		return []byte(fmt.Sprintf("%d", b.Int64())), nil
	}
}

func (b *Bytes) UnmarshalText(text []byte) error {
	n, err := ParseBytes(string(text))
	if err != nil {
		return err
	}
	*b = Bytes(n)
	return nil
}

func ParseBytes(s string) (int64, error) {
	subs := bytesRegexp.FindStringSubmatch(s)
	if len(subs) != 3 {
		return 0, ErrBadBytes
	}

	text := subs[1]
	size := int64(1)
	switch subs[2] {
	case "b", "":
	case "k", "kb":
		size = KB
	case "m", "mb":
		size = MB
	case "g", "gb":
		size = GB
	case "t", "tb":
		size = TB
	case "p", "pb":
		size = PB
	default:
		return 0, ErrBadBytesUnit
	}

	if digitsOnly.MatchString(text) {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, ErrBadBytes
		}
		size *= n
	} else {
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, ErrBadBytes
		}
		size = int64(float64(size) * n)
	}
	return size, nil
}

// Duration is a time.Duration that reads and writes with unit suffixes in
// TOML; bare numbers mean seconds.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) Int64() int64 {
	return int64(d)
}

func (d Duration) MarshalText() ([]byte, error) {
	if d == 0 {
		return []byte("0"), nil
	}
	abs := time.Duration(d)
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs%time.Hour == 0:
		return []byte(fmt.Sprintf("%dh", d.Int64()/int64(time.Hour))), nil
	case abs%time.Minute == 0:
		return []byte(fmt.Sprintf("%dm", d.Int64()/int64(time.Minute))), nil
	case abs%time.Second == 0:
		return []byte(fmt.Sprintf("%ds", d.Int64()/int64(time.Second))), nil
	case abs%time.Millisecond == 0:
		return []byte(fmt.Sprintf("%dms", d.Int64()/int64(time.Millisecond))), nil
	case abs%time.Microsecond == 0:
		return []byte(fmt.Sprintf("%dus", d.Int64()/int64(time.Microsecond))), nil
	default:
		return []byte(d.Duration().String()), nil
	}
}

func (d *Duration) UnmarshalText(text []byte) error {
	n, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

func ParseDuration(s string) (time.Duration, error) {
	subs := durRegexp.FindStringSubmatch(s)
	if len(subs) != 3 {
		return 0, ErrBadDuration
	}

	text := subs[1]
	switch unit := subs[2]; {
	case unit != "":
		return time.ParseDuration(text + unit)
	case digitsOnly.MatchString(text):
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, ErrBadDuration
		}
		return time.Duration(n * int64(time.Second)), nil
	default:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, ErrBadDuration
		}
		return time.Duration(n * float64(time.Second)), nil
	}
}

// FmtBytes renders a byte count for stats and log lines.
func FmtBytes(size uint64) string {
	switch {
	case size < KB:
		return fmt.Sprintf("%dB", size)
	case size < MB:
		return fmt.Sprintf("%d.%03dKB", size>>10, size%KB)
	case size < GB:
		return fmt.Sprintf("%d.%03dMB", size>>20, (size>>10)%KB)
	case size < TB:
		return fmt.Sprintf("%d.%03dGB", size>>30, (size>>20)%KB)
	case size < PB:
		return fmt.Sprintf("%d.%03dTB", size>>40, (size>>30)%KB)
	default:
		return fmt.Sprintf("%d.%03dPB", size>>50, (size>>40)%KB)
	}
}

// FmtDuration renders an elapsed time for stats and log lines.
func FmtDuration(d time.Duration) string {
	switch {
	case d > time.Second:
		return fmt.Sprintf("%d.%03ds", d/time.Second, d/time.Millisecond%1000)
	case d > time.Millisecond:
		return fmt.Sprintf("%d.%03dms", d/time.Millisecond, d/time.Microsecond%1000)
	case d > time.Microsecond:
		return fmt.Sprintf("%d.%03dus", d/time.Microsecond, d%1000)
	default:
		return fmt.Sprintf("%dns", d)
	}
}
