package utils

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// NextSequentialCode assigns the next human-readable code for a table whose
// codes look like PMT0001, STU0042, etc. The next code is the highest existing
// numeric suffix plus one; freed numbers are never reused.
func NextSequentialCode(tx *gorm.DB, model interface{}, prefix string) (string, error) {
	var codes []string
	err := tx.Model(model).
		Where("code LIKE ?", prefix+"%").
		Order("char_length(code) DESC, code DESC").
		Limit(1).
		Pluck("code", &codes).Error
	if err != nil {
		return "", err
	}
	last := ""
	if len(codes) > 0 {
		last = codes[0]
	}
	return NextCode(prefix, last), nil
}

// NextCode computes the successor of the last issued code. An empty or
// unparseable last code starts the sequence at 1.
func NextCode(prefix, last string) string {
	n := 0
	if suffix := strings.TrimPrefix(last, prefix); suffix != last {
		if parsed, err := strconv.Atoi(suffix); err == nil {
			n = parsed
		}
	}
	return fmt.Sprintf("%s%04d", prefix, n+1)
}
