package categorizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"fjacquet/bank-import/internal/models"
)

// shortKeywordLen is the longest keyword, spaces trimmed, that only
// matches as a whole word. "ATM" must not hit "DENTAL TREATMENT".
const shortKeywordLen = 4

// KeywordRule maps a description keyword onto an outcome.
type KeywordRule[T any] struct {
	Keyword string
	Outcome T
}

// KeywordTable is an ordered list of rules evaluated by first match.
// Keywords are matched as upper-case substrings of the normalized
// description, except keywords of shortKeywordLen characters or fewer,
// which must stand as a whole word.
type KeywordTable[T any] struct {
	rules []KeywordRule[T]
}

// NewKeywordTable copies rules into a table, upper-casing each keyword.
// Rules with an empty keyword are dropped.
func NewKeywordTable[T any](rules ...KeywordRule[T]) KeywordTable[T] {
	table := KeywordTable[T]{rules: make([]KeywordRule[T], 0, len(rules))}
	for _, r := range rules {
		if strings.TrimSpace(r.Keyword) == "" {
			continue
		}
		table.rules = append(table.rules, KeywordRule[T]{Keyword: strings.ToUpper(r.Keyword), Outcome: r.Outcome})
	}
	return table
}

// Match returns the first rule whose keyword appears in description.
func (t KeywordTable[T]) Match(description string) (KeywordRule[T], bool) {
	normalized := models.NormalizeDescription(description)
	if normalized == "" {
		return KeywordRule[T]{}, false
	}
	for _, r := range t.rules {
		if containsKeyword(normalized, r.Keyword) {
			return r, true
		}
	}
	return KeywordRule[T]{}, false
}

func containsKeyword(s, keyword string) bool {
	word := strings.TrimSpace(keyword)
	if utf8.RuneCountInString(word) > shortKeywordLen {
		return strings.Contains(s, keyword)
	}
	for from := 0; from < len(s); {
		idx := strings.Index(s[from:], word)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(word)
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		from = start + 1
	}
	return false
}

// isWordRune reports whether r continues a word. utf8.RuneError marks the
// start or end of the string.
func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// Rules returns a copy of the table's rules in evaluation order.
func (t KeywordTable[T]) Rules() []KeywordRule[T] {
	return append([]KeywordRule[T](nil), t.rules...)
}

// Len is the number of rules.
func (t KeywordTable[T]) Len() int {
	return len(t.rules)
}

func group[T any](outcome T, keywords ...string) []KeywordRule[T] {
	rules := make([]KeywordRule[T], len(keywords))
	for i, k := range keywords {
		rules[i] = KeywordRule[T]{Keyword: k, Outcome: outcome}
	}
	return rules
}

func concat[T any](groups ...[]KeywordRule[T]) []KeywordRule[T] {
	var all []KeywordRule[T]
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

// DefaultExpenseRules is the built-in expense keyword table.
func DefaultExpenseRules() []KeywordRule[models.ExpenseCategory] {
	return concat(
		group(models.ExpenseOfficeCosts, "AMAZON", "STAPLES", "OFFICE", "STATIONERY", "ADOBE", "MICROSOFT", "SOFTWARE"),
		group(models.ExpenseTravel, "TRAINLINE", "RAIL", "TFL", "UBER", "TAXI", "HOTEL", "AIRLINE", "EASYJET", "RYANAIR"),
		group(models.ExpenseTravelMileage, "MILEAGE", "FUEL", "PETROL", "SHELL", "BP "),
		group(models.ExpensePremises, "RENT", "RATES", "ELECTRIC", "GAS", "WATER", "INSURANCE"),
		group(models.ExpenseProfessionalFees, "ACCOUNTANT", "SOLICITOR", "LEGAL", "CONSULTANT"),
		group(models.ExpenseStaffCosts, "SALARY", "WAGES", "PAYROLL", "PENSION"),
	)
}

// DefaultIncomeRules is the built-in income keyword table.
func DefaultIncomeRules() []KeywordRule[models.IncomeCategory] {
	return group(models.IncomeOther, "INTEREST", "DIVIDEND")
}

// DefaultExclusionRules is the built-in exclusion keyword table.
func DefaultExclusionRules() []KeywordRule[models.ExclusionReason] {
	return concat(
		group(models.ExclusionTransfer, "TRANSFER", "TFR", "STANDING ORDER TO SAVINGS"),
		group(models.ExclusionTaxPayment, "HMRC"),
		group(models.ExclusionLoan, "LOAN"),
		group(models.ExclusionCreditCard, "CREDIT CARD", "AMEX", "BARCLAYCARD"),
		group(models.ExclusionCashWithdrawal, "CASH WITHDRAWAL", "ATM"),
	)
}
