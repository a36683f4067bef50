package inspect

import (
	"fmt"
	"math"
	"strings"

	"siteguard/internal/domain"
)

var sensitiveNameHints = []string{"password", "passwd", "ssn", "credit", "card_number", "cardnumber", "cvv", "cvc"}

// AnalyzeForm scores one form against structural rules and fills its
// HealthScore, IssueCount and Issues fields in place. High severity issues
// deduct 20, medium 10, low 4, floored at 0.
func AnalyzeForm(f *domain.Form) {
	var issues []domain.FormIssue

	hasSubmit := false
	for _, field := range f.Fields {
		t := strings.ToLower(field.Type)
		if t == "submit" || t == "image" || field.Tag == "button" {
			hasSubmit = true
			break
		}
	}
	if !hasSubmit && len(f.Fields) > 0 {
		issues = append(issues, domain.FormIssue{
			Type:     "missing_submit",
			Severity: "medium",
			Detail:   "Form has no submit button",
		})
	}

	method := strings.ToUpper(f.Method)
	for _, field := range f.Fields {
		t := strings.ToLower(field.Type)
		name := strings.ToLower(field.Name)
		hint := name + " " + strings.ToLower(field.Placeholder)

		if field.Name == "" && field.Tag == "input" && t != "submit" && t != "button" {
			issues = append(issues, domain.FormIssue{
				Type:     "missing_name",
				Severity: "medium",
				Detail:   "Input field has no name attribute - value will not submit",
			})
		}

		// Type expectations from the field's name/placeholder hints. Plain
		// text inputs are tolerated for phone and numeric fields; email
		// fields lose browser-side validation without type=email.
		if t != "hidden" && t != "submit" && t != "button" && t != "reset" {
			switch {
			case strings.Contains(hint, "email") && t != "email":
				issues = append(issues, domain.FormIssue{
					Type:     "type_mismatch",
					Severity: "medium",
					Field:    field.Name,
					Detail:   fmt.Sprintf("Email field uses type=%s instead of type=email", field.Type),
				})
			case (strings.Contains(hint, "phone") || strings.Contains(hint, "tel")) && t != "tel" && t != "text":
				issues = append(issues, domain.FormIssue{
					Type:     "type_mismatch",
					Severity: "low",
					Field:    field.Name,
					Detail:   fmt.Sprintf("Phone field uses type=%s instead of type=tel", field.Type),
				})
			case (strings.Contains(hint, "quantity") || strings.Contains(hint, "amount") || strings.Contains(hint, "age")) && t != "number" && t != "text":
				issues = append(issues, domain.FormIssue{
					Type:     "type_mismatch",
					Severity: "low",
					Field:    field.Name,
					Detail:   fmt.Sprintf("Numeric field uses type=%s instead of type=number", field.Type),
				})
			}
		}

		if method == "GET" && isSensitiveField(t, name) {
			issues = append(issues, domain.FormIssue{
				Type:     "sensitive_get",
				Severity: "high",
				Field:    field.Name,
				Detail:   fmt.Sprintf("Sensitive field %q submitted via GET - exposed in URL and logs", field.Name),
			})
		}
	}

	score := 100.0
	for _, iss := range issues {
		switch iss.Severity {
		case "high":
			score -= 20
		case "medium":
			score -= 10
		case "low":
			score -= 4
		}
	}
	score = math.Max(0, score)

	f.HealthScore = domain.Float64Ptr(score)
	f.IssueCount = len(issues)
	f.Issues = issues
}

// AnalyzeForms runs AnalyzeForm over every form in the slice.
func AnalyzeForms(forms []domain.Form) {
	for i := range forms {
		AnalyzeForm(&forms[i])
	}
}

func isSensitiveField(fieldType, name string) bool {
	if fieldType == "password" {
		return true
	}
	for _, hint := range sensitiveNameHints {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}
