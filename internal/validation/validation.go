package validation

import (
	"fmt"
	"regexp"
	"strings"

	"stemquest/internal/models"
)

var (
	phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)
	otpRegex   = regexp.MustCompile(`^[0-9]{6}$`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NormalizePhone strips formatting characters from a phone number
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// ValidatePhone checks if a phone number is a 10-digit number
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ValidationError{Field: "phone", Message: "phone number is required"}
	}
	if !phoneRegex.MatchString(phone) {
		return ValidationError{Field: "phone", Message: "phone number must be 10 digits"}
	}
	return nil
}

// ValidateOTPCode checks if a verification code is a 6-digit number
func ValidateOTPCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ValidationError{Field: "code", Message: "verification code is required"}
	}
	if !otpRegex.MatchString(code) {
		return ValidationError{Field: "code", Message: "verification code must be 6 digits"}
	}
	return nil
}

// ValidateGrade checks if a grade band exists
func ValidateGrade(grade string) error {
	if grade == "" {
		return ValidationError{Field: "grade", Message: "grade is required"}
	}
	if !models.IsValidGrade(grade) {
		return ValidationError{Field: "grade", Message: "unknown grade band"}
	}
	return nil
}

// ValidateSubmission checks a quiz completion payload
func ValidateSubmission(s *models.QuizSubmission) error {
	if strings.TrimSpace(s.QuizID) == "" {
		return ValidationError{Field: "quizId", Message: "quiz id is required"}
	}
	if s.TotalQuestions <= 0 {
		return ValidationError{Field: "totalQuestions", Message: "total questions must be positive"}
	}
	if len(s.Answers) > s.TotalQuestions {
		return ValidationError{Field: "answers", Message: "more answers than questions"}
	}
	if s.BasePoints < 0 {
		return ValidationError{Field: "basePoints", Message: "base points cannot be negative"}
	}
	if s.TimeSpentSeconds < 0 {
		return ValidationError{Field: "timeSpent", Message: "time spent cannot be negative"}
	}
	return nil
}

// ValidateBackup checks an import payload before anything is written
func ValidateBackup(b *models.Backup) error {
	if b.Version == "" {
		return ValidationError{Field: "version", Message: "version is required"}
	}
	if b.Version != models.BackupVersion {
		return ValidationError{Field: "version",
			Message: fmt.Sprintf("unsupported version %q", b.Version)}
	}
	if b.Timestamp.IsZero() {
		return ValidationError{Field: "timestamp", Message: "timestamp is required"}
	}

	if b.Data.Progress != nil {
		if b.Data.Progress.TotalPoints < 0 {
			return ValidationError{Field: "data.progress", Message: "total points cannot be negative"}
		}
		if b.Data.Progress.CurrentStreak < 0 {
			return ValidationError{Field: "data.progress", Message: "streak cannot be negative"}
		}
	}

	for i, r := range b.Data.Results {
		if r.UID == "" {
			return ValidationError{Field: fmt.Sprintf("data.results[%d]", i),
				Message: "result id is required"}
		}
		if r.CompletedAt.IsZero() {
			return ValidationError{Field: fmt.Sprintf("data.results[%d]", i),
				Message: "completedAt is required"}
		}
	}

	for i, a := range b.Data.Activities {
		if a.UID == "" {
			return ValidationError{Field: fmt.Sprintf("data.activities[%d]", i),
				Message: "activity id is required"}
		}
		if a.Type == "" {
			return ValidationError{Field: fmt.Sprintf("data.activities[%d]", i),
				Message: "activity type is required"}
		}
	}

	for i, a := range b.Data.Achievements {
		if a.ID == "" {
			return ValidationError{Field: fmt.Sprintf("data.achievements[%d]", i),
				Message: "achievement id is required"}
		}
		if a.Earned && a.EarnedDate == nil {
			return ValidationError{Field: fmt.Sprintf("data.achievements[%d]", i),
				Message: "earned achievements need an earned date"}
		}
	}

	return nil
}
