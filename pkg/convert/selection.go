package convert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSelection is returned for malformed save selections.
var ErrInvalidSelection = errors.New("invalid selection")

// ParseSelection parses a comma-separated list of 1-based save numbers, or a lone "0"
// for every save, and returns zero-based indexes below count.
func ParseSelection(input string, count int) ([]int, error) {
	fields := strings.Split(input, ",")

	indexes := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, f)
		}
		if n < 0 || n > count {
			return nil, fmt.Errorf("%w: use values between 1 and %d or 0 alone", ErrInvalidSelection, count)
		}
		indexes = append(indexes, n-1)
	}

	for _, i := range indexes {
		if i != -1 {
			continue
		}
		if len(indexes) != 1 {
			return nil, fmt.Errorf("%w: 0 selects every save and must be alone", ErrInvalidSelection)
		}
		all := make([]int, count)
		for j := range all {
			all[j] = j
		}
		return all, nil
	}

	return indexes, nil
}

// ParseRenames parses "number=NAME" pairs separated by commas, such as "1=BASE,3=MOON",
// into new base names keyed by zero-based save index.
func ParseRenames(input string) (map[int]string, error) {
	renames := make(map[int]string)
	if strings.TrimSpace(input) == "" {
		return renames, nil
	}

	for _, pair := range strings.Split(input, ",") {
		num, name, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: rename %q needs number=NAME", ErrInvalidSelection, pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: rename %q needs a save number", ErrInvalidSelection, pair)
		}
		renames[n-1] = strings.ToUpper(strings.TrimSpace(name))
	}
	return renames, nil
}
