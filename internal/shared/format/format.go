package format

import (
	"fmt"
	"math"
	"strings"
)

// Grouped возвращает число с разделителями тысяч: Grouped(1234567.891, 2) -> "1,234,567.89".
// decimals=0 печатает целое без дробной части.
func Grouped(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%v", v)
	}
	if decimals < 0 {
		decimals = 0
	}
	s := fmt.Sprintf("%.*f", decimals, v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")

	// Форматируем целую часть с разделителями тысяч
	var out []byte
	cnt := 0
	for i := len(intPart) - 1; i >= 0; i-- {
		out = append(out, intPart[i])
		cnt++
		if cnt%3 == 0 && i != 0 {
			out = append(out, ',')
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	res := string(out)
	if frac != "" {
		res += "." + frac
	}
	if neg && strings.Trim(res, "0.,") != "" {
		res = "-" + res
	}
	return res
}

// USD: "$1,234.56".
func USD(v float64, decimals int) string {
	s := Grouped(v, decimals)
	if strings.HasPrefix(s, "-") {
		return "-$" + s[1:]
	}
	return "$" + s
}

// Percent печатает долю как проценты: Percent(0.1234, 2) -> "12.34%".
func Percent(ratio float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, ratio*100)
}
