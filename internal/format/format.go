package format

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"
)

const etherDecimals = 18

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(etherDecimals), nil)

// TruncateAddress shortens an address for display.
func TruncateAddress(addr string) string {
	if addr == "" {
		return ""
	}
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// FormatDate renders a date as "Jan 2, 2006".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// RemainingDays returns whole days left until deadline, rounded up. Never negative.
func RemainingDays(deadline, now time.Time) int {
	diff := deadline.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// FormatEther renders a wei amount as an exact decimal ether string.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}

	sign := ""
	value := new(big.Int).Set(wei)
	if value.Sign() < 0 {
		sign = "-"
		value.Neg(value)
	}

	whole, frac := new(big.Int).QuoRem(value, weiPerEther, new(big.Int))
	fracStr := fmt.Sprintf("%018s", frac.String())
	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		fracStr = "0"
	}
	return sign + whole.String() + "." + fracStr
}

// ParseEther converts a decimal ether string into wei without floating point.
func ParseEther(input string) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(input, "-") {
		return nil, fmt.Errorf("negative amount: %s", input)
	}
	input = strings.TrimPrefix(input, "+")

	whole, frac, _ := strings.Cut(input, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid amount: %s", input)
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, fmt.Errorf("invalid amount: %s", input)
	}
	if len(frac) > etherDecimals {
		return nil, fmt.Errorf("too many decimals: %s", input)
	}

	digits := whole + frac + strings.Repeat("0", etherDecimals-len(frac))
	wei, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", input)
	}
	return wei, nil
}

// Progress computes min(100, raised/goal*100) from decimal strings.
// Unparsable or non-positive goals yield 0.
func Progress(raised, goal string) float64 {
	goalWei, err := ParseEther(goal)
	if err != nil || goalWei.Sign() <= 0 {
		return 0
	}
	raisedWei, err := ParseEther(raised)
	if err != nil {
		return 0
	}

	ratio, _ := new(big.Float).Quo(new(big.Float).SetInt(raisedWei), new(big.Float).SetInt(goalWei)).Float64()
	pct := ratio * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Percent renders a progress value rounded for display.
func Percent(p float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(p)))
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
