package chat

import (
	"AtendeBot/entity"
	"fmt"
	"strconv"
	"strings"
)

// DigitsOnly strips every non-digit character.
func DigitsOnly(s string) string {
	var sb strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

// FirstName returns the text up to the first whitespace.
func FirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return fullName
	}
	return fields[0]
}

// MatchNumberToOption converts a bare number reply ("1", "2", ...) to the
// corresponding option value. Returns empty string when there is no match;
// the caller then submits the raw text unchanged.
func MatchNumberToOption(text string, options []entity.Option) string {
	num, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || num < 1 || num > len(options) {
		return ""
	}
	return options[num-1].Value
}

// AppendNumberedOptions renders options as numbered lines under the text,
// for channels where quick replies are not natively renderable.
func AppendNumberedOptions(text string, options []entity.Option) string {
	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n\n")
	for i, opt := range options {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d️⃣ %s", i+1, opt.Label))
	}
	sb.WriteString(numberedInstructionText)
	return sb.String()
}

// WhatsAppHandoffLink builds the deep link used for human-department
// handoffs: a wa.me URL addressed to the department's phone, pre-filled
// with a templated greeting naming the department.
func WhatsAppHandoffLink(phone, department string) string {
	return fmt.Sprintf("https://wa.me/%s?text=Olá,%%20vim%%20do%%20site%%20e%%20gostaria%%20de%%20falar%%20com%%20%s.", phone, department)
}

// DepartmentOptionLabel renders a department menu entry.
func DepartmentOptionLabel(d entity.Department) string {
	return fmt.Sprintf("%s %s", d.Icon, d.Name)
}
