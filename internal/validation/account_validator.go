package validation

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "dropwatch/internal/errors"
	"dropwatch/pkg/contracts/domain"
)

// AccountValidator checks account definitions before any connection is made
type AccountValidator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// Rejection records an account left out of a run and why
type Rejection struct {
	Account string
	Err     error
}

// NewAccountValidator creates a new account validator
func NewAccountValidator(logger *slog.Logger) *AccountValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountValidator{
		validate: validator.New(),
		logger:   logger,
	}
}

// Validate checks a single account. The returned error is a ValidationError
// listing every failed field.
func (v *AccountValidator) Validate(acct domain.Account) error {
	err := v.validate.Struct(acct)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid account", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return apperrors.NewValidationError(fmt.Sprintf("account %q: %s", acct.Name, strings.Join(problems, "; "))).
		WithContext("account", acct.Name)
}

// ValidateAccounts keeps valid accounts in their original order. Invalid
// accounts and repeated names are returned as rejections.
func (v *AccountValidator) ValidateAccounts(accounts []domain.Account) ([]domain.Account, []Rejection) {
	valid := make([]domain.Account, 0, len(accounts))
	var rejected []Rejection
	seen := make(map[string]bool, len(accounts))

	for _, acct := range accounts {
		key := strings.ToLower(acct.Name)
		if seen[key] {
			err := apperrors.NewValidationError(fmt.Sprintf("account %q: duplicate name", acct.Name))
			rejected = append(rejected, Rejection{Account: acct.Name, Err: err})
			v.logger.Warn("Skipping duplicate account", slog.String("account", acct.Name))
			continue
		}

		if err := v.Validate(acct); err != nil {
			rejected = append(rejected, Rejection{Account: acct.Name, Err: err})
			v.logger.Warn("Skipping invalid account",
				slog.String("account", acct.Name),
				slog.String("error", err.Error()))
			continue
		}

		seen[key] = true
		valid = append(valid, acct)
	}

	v.logger.Debug("Accounts validated",
		slog.Int("valid", len(valid)),
		slog.Int("rejected", len(rejected)))
	return valid, rejected
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Account.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind().String() == "slice" {
			return field + " needs at least " + fe.Param() + " entry"
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "hostname_rfc1123|ip":
		return fmt.Sprintf("%s %q is not a valid host name", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}
