package categorizer

import "fjacquet/bank-import/internal/models"

// DefaultTravelMileageBox is the SA103F box used for mileage unless configured.
const DefaultTravelMileageBox = 20

// SA103F income boxes.
const (
	BoxTurnover    = 15
	BoxOtherIncome = 16
)

// BoxMapping maps categories onto SA103F boxes.
type BoxMapping struct {
	expense map[models.ExpenseCategory]int
	income  map[models.IncomeCategory]int
}

// NewBoxMapping returns the standard mapping with the given mileage box.
// A non-positive box selects DefaultTravelMileageBox.
func NewBoxMapping(travelMileageBox int) BoxMapping {
	if travelMileageBox <= 0 {
		travelMileageBox = DefaultTravelMileageBox
	}
	return BoxMapping{
		expense: map[models.ExpenseCategory]int{
			models.ExpenseStaffCosts:       19,
			models.ExpenseTravel:           20,
			models.ExpenseTravelMileage:    travelMileageBox,
			models.ExpensePremises:         21,
			models.ExpenseOfficeCosts:      23,
			models.ExpenseProfessionalFees: 28,
			models.ExpenseOther:            30,
		},
		income: map[models.IncomeCategory]int{
			models.IncomeSales: BoxTurnover,
			models.IncomeOther: BoxOtherIncome,
		},
	}
}

// ExpenseBox returns the box for an expense category.
func (m BoxMapping) ExpenseBox(category models.ExpenseCategory) (int, bool) {
	box, ok := m.expense[category]
	return box, ok
}

// IncomeBox returns the box for an income category.
func (m BoxMapping) IncomeBox(category models.IncomeCategory) (int, bool) {
	box, ok := m.income[category]
	return box, ok
}
