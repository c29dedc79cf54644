package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnLetter converts a zero-based column index to its A1 letters
// (0 -> A, 25 -> Z, 26 -> AA).
func ColumnLetter(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		rem := i % 26
		res = append(res, rune('A'+rem))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// CellRef builds an A1 reference such as "C14" from a zero-based column
// and a 1-based sheet row.
func CellRef(col, row int) string {
	return ColumnLetter(col) + strconv.Itoa(row)
}

// SplitCellRef is the inverse of CellRef.
func SplitCellRef(ref string) (col, row int, err error) {
	s := strings.ToUpper(strings.TrimSpace(ref))
	i := 0
	n := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		n = n*26 + int(s[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(s) {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	row, err = strconv.Atoi(s[i:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	return n - 1, row, nil
}

// qualify prefixes a cell with its sheet name, quoting names with spaces.
func qualify(sheet, cell string) string {
	if strings.ContainsAny(sheet, " '!") {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + cell
}
