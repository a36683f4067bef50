package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"siteguard/internal/domain"
)

func TestAnalyzeForm(t *testing.T) {
	t.Run("well formed form keeps a perfect score", func(tt *testing.T) {
		f := domain.Form{
			Method: "POST",
			Fields: []domain.FormField{
				{Tag: "input", Type: "email", Name: "email"},
				{Tag: "input", Type: "submit", Name: "go"},
			},
		}
		AnalyzeForm(&f)
		assert.Equal(tt, 100.0, *f.HealthScore)
		assert.Equal(tt, 0, f.IssueCount)
	})

	t.Run("missing submit button is a medium issue", func(tt *testing.T) {
		f := domain.Form{
			Method: "POST",
			Fields: []domain.FormField{{Tag: "input", Type: "text", Name: "q"}},
		}
		AnalyzeForm(&f)
		assert.Equal(tt, 90.0, *f.HealthScore)
		assert.Equal(tt, "missing_submit", f.Issues[0].Type)
	})

	t.Run("email field typed as text is a medium issue", func(tt *testing.T) {
		f := domain.Form{
			Method: "POST",
			Fields: []domain.FormField{
				{Tag: "input", Type: "text", Name: "email"},
				{Tag: "input", Type: "submit", Name: "go"},
			},
		}
		AnalyzeForm(&f)
		assert.Equal(tt, 90.0, *f.HealthScore)
		assert.Equal(tt, "type_mismatch", f.Issues[0].Type)
		assert.Equal(tt, "medium", f.Issues[0].Severity)
	})

	t.Run("phone field accepts plain text input", func(tt *testing.T) {
		f := domain.Form{
			Method: "POST",
			Fields: []domain.FormField{
				{Tag: "input", Type: "text", Name: "phone"},
				{Tag: "input", Type: "submit", Name: "go"},
			},
		}
		AnalyzeForm(&f)
		assert.Equal(tt, 100.0, *f.HealthScore)
		assert.Equal(tt, 0, f.IssueCount)
	})

	t.Run("placeholder hints also trigger type mismatch", func(tt *testing.T) {
		f := domain.Form{
			Method: "POST",
			Fields: []domain.FormField{
				{Tag: "input", Type: "checkbox", Name: "contact", Placeholder: "Phone number"},
				{Tag: "input", Type: "submit", Name: "go"},
			},
		}
		AnalyzeForm(&f)
		assert.Equal(tt, 1, f.IssueCount)
		assert.Equal(tt, "low", f.Issues[0].Severity)
	})

	t.Run("numeric field accepts plain text input", func(tt *testing.T) {
		f := domain.Form{
			Method: "POST",
			Fields: []domain.FormField{
				{Tag: "input", Type: "text", Name: "quantity"},
				{Tag: "input", Type: "submit", Name: "go"},
			},
		}
		AnalyzeForm(&f)
		assert.Equal(tt, 0, f.IssueCount)
	})

	t.Run("nameless input is a medium issue", func(tt *testing.T) {
		f := domain.Form{
			Method: "POST",
			Fields: []domain.FormField{
				{Tag: "input", Type: "text"},
				{Tag: "input", Type: "submit"},
			},
		}
		AnalyzeForm(&f)
		assert.Equal(tt, 90.0, *f.HealthScore)
		assert.Equal(tt, "missing_name", f.Issues[0].Type)
	})

	t.Run("password over GET is a high issue", func(tt *testing.T) {
		f := domain.Form{
			Method: "get",
			Fields: []domain.FormField{
				{Tag: "input", Type: "password", Name: "password"},
				{Tag: "input", Type: "submit", Name: "go"},
			},
		}
		AnalyzeForm(&f)
		assert.Equal(tt, 80.0, *f.HealthScore)
		found := false
		for _, iss := range f.Issues {
			if iss.Type == "sensitive_get" {
				found = true
				assert.Equal(tt, "high", iss.Severity)
			}
		}
		assert.True(tt, found)
	})

	t.Run("score floors at zero", func(tt *testing.T) {
		fields := []domain.FormField{}
		for i := 0; i < 6; i++ {
			fields = append(fields, domain.FormField{Tag: "input", Type: "password", Name: "password"})
		}
		f := domain.Form{Method: "GET", Fields: fields}
		AnalyzeForm(&f)
		assert.Equal(tt, 0.0, *f.HealthScore)
	})
}

func TestAnalyzeForms(t *testing.T) {
	forms := []domain.Form{
		{Method: "POST", Fields: []domain.FormField{{Tag: "input", Type: "submit", Name: "go"}}},
		{Method: "POST", Fields: []domain.FormField{{Tag: "input", Type: "text", Name: "q"}}},
	}
	AnalyzeForms(forms)
	assert.NotNil(t, forms[0].HealthScore)
	assert.NotNil(t, forms[1].HealthScore)
	assert.Less(t, *forms[1].HealthScore, *forms[0].HealthScore)
}
