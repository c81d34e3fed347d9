package ingestion

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Company is the employer block of a feed record.
type Company struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// ExternalJobRecord is one job listing as served by the remote feed.
type ExternalJobRecord struct {
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Company              Company  `json:"company"`
	SkillsMandatoryNames []string `json:"skills_mandatory_names"`
	SkillsDesiredNames   []string `json:"skills_desired_names"`
	LanguageSkillsNames  []string `json:"language_skills_names"`
	HowToApply           string   `json:"how_to_apply"`
	SalaryFrom           Amount   `json:"salary_from"`
	SalaryTo             Amount   `json:"salary_to"`
}

type feedPage struct {
	Data []ExternalJobRecord `json:"data"`
}

// Amount accepts a JSON number, a numeric string or null.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("salary: %w", err)
	}
	if n.String() == "0" {
		*a = ""
		return nil
	}
	*a = Amount(n.String())
	return nil
}

// Fingerprint identifies a record by title and description.
func Fingerprint(title, description string) string {
	sum := sha256.Sum256([]byte(title + "\x00" + description))
	return hex.EncodeToString(sum[:])
}

// BuildContent renders the post body. A section appears only when its
// source field is non-empty.
func BuildContent(r ExternalJobRecord) string {
	var b strings.Builder
	b.WriteString(r.Description)

	section := func(heading, body string) {
		if body == "" {
			return
		}
		b.WriteString("\n<h2>")
		b.WriteString(heading)
		b.WriteString("</h2>\n<p>")
		b.WriteString(body)
		b.WriteString("</p>")
	}
	section("Required Skills", joinNames(r.SkillsMandatoryNames))
	section("Desired Skills", joinNames(r.SkillsDesiredNames))
	section("Language Skills", joinNames(r.LanguageSkillsNames))
	section("How to Apply", strings.TrimSpace(r.HowToApply))
	section("Salary Range", salaryRange(r.SalaryFrom, r.SalaryTo))

	return strings.TrimSpace(b.String())
}

func joinNames(names []string) string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, html.EscapeString(n))
		}
	}
	return strings.Join(out, ", ")
}

func salaryRange(from, to Amount) string {
	switch {
	case from != "" && to != "":
		return html.EscapeString(string(from) + " - " + string(to))
	case from != "":
		return html.EscapeString(string(from))
	case to != "":
		return html.EscapeString(string(to))
	}
	return ""
}
