// Package date разбирает даты из форм: YYYY-MM-DD или полный RFC3339.
package date

import (
	"fmt"
	"strings"
	"time"
)

const layoutDay = "2006-01-02"

// Parse разбирает обязательную дату.
func Parse(value string) (time.Time, error) {
	const op = "date.Parse"
	value = strings.TrimSpace(value)
	if t, err := time.Parse(layoutDay, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date %q", op, value)
	}
	return t, nil
}

// ParseOptional разбирает необязательную дату: пустая строка даёт nil.
func ParseOptional(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := Parse(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Italian форматирует дату как d/m/yyyy, нулевая дата даёт пустую строку.
func Italian(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2/1/2006")
}
