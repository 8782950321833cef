package logics

import (
	"context"
	"math/rand"

	"contaula-server/internal/auth"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Depreciation methods.
const (
	MethodStraightLine    = "linea_recta"
	MethodSumOfYears      = "suma_digitos"
	MethodDoubleDeclining = "doble_declinante"
	MethodUnitsProduction = "unidades_produccion"

	LevelBasicDepreciation       = 3
	LevelAcceleratedDepreciation = 4
)

// DepreciationExercise is one randomized asset-depreciation problem: value
// the expense of one target year and the book value at its end.
type DepreciationExercise struct {
	ID           string          `json:"id"`
	Level        int             `json:"level"`
	Method       string          `json:"method"`
	Cost         decimal.Decimal `json:"cost"`
	Salvage      decimal.Decimal `json:"salvage"`
	LifeYears    int             `json:"life_years"`
	TargetYear   int             `json:"target_year"`
	UnitsPerYear []int           `json:"units_per_year,omitempty"` // units-of-production only
}

// DepreciationSolution holds the two graded amounts for the target year.
type DepreciationSolution struct {
	YearExpense  decimal.Decimal `json:"year_expense"`
	EndBookValue decimal.Decimal `json:"end_book_value"`
}

// DepreciationAnswer is what the student submits.
type DepreciationAnswer struct {
	YearExpense  decimal.Decimal `json:"year_expense"`
	EndBookValue decimal.Decimal `json:"end_book_value"`
}

// DepreciationService generates and grades the two depreciation levels.
type DepreciationService struct {
	logger *zap.Logger
}

func NewDepreciationService(logger *zap.Logger) *DepreciationService {
	return &DepreciationService{logger: logger}
}

func depreciationMethodForLevel(level int) (string, error) {
	switch level {
	case LevelBasicDepreciation:
		if rand.Intn(2) == 0 {
			return MethodStraightLine, nil
		}
		return MethodSumOfYears, nil
	case LevelAcceleratedDepreciation:
		if rand.Intn(2) == 0 {
			return MethodDoubleDeclining, nil
		}
		return MethodUnitsProduction, nil
	}
	return "", auth.NewAuthError(auth.ErrInvalidField, "no depreciation exercise for this level")
}

// Generate builds a fresh randomized exercise for the level, caches it for
// grading and returns it.
func (s *DepreciationService) Generate(ctx context.Context, username string, level int) (*DepreciationExercise, error) {
	method, err := depreciationMethodForLevel(level)
	if err != nil {
		return nil, err
	}

	life := rand.Intn(4) + 4 // 4..7 years
	exercise := &DepreciationExercise{
		ID:         uuid.NewString(),
		Level:      level,
		Method:     method,
		Cost:       decimal.NewFromInt(int64((rand.Intn(40) + 20) * 1000)), // 20,000..59,000
		Salvage:    decimal.NewFromInt(int64((rand.Intn(8) + 2) * 500)),    // 1,000..4,500
		LifeYears:  life,
		TargetYear: rand.Intn(life) + 1,
	}

	if method == MethodUnitsProduction {
		exercise.UnitsPerYear = make([]int, life)
		for i := range exercise.UnitsPerYear {
			exercise.UnitsPerYear[i] = (rand.Intn(10) + 5) * 100 // 500..1400 per year
		}
	}

	if err := cacheExercise(ctx, username, level, exercise); err != nil {
		return nil, auth.NewAuthErrorWithCause(auth.ErrInternal, "failed to cache exercise", err)
	}

	s.logger.Info("Depreciation exercise generated",
		zap.String("username", username),
		zap.Int("level", level),
		zap.String("method", method),
		zap.String("exerciseId", exercise.ID))
	return exercise, nil
}

// Grade scores an answer against the outstanding exercise for the level.
func (s *DepreciationService) Grade(ctx context.Context, username string, level int, answer DepreciationAnswer) (*GradeResult, error) {
	if level != LevelBasicDepreciation && level != LevelAcceleratedDepreciation {
		return nil, auth.NewAuthError(auth.ErrInvalidField, "no depreciation exercise for this level")
	}

	var exercise DepreciationExercise
	found, err := loadExercise(ctx, username, level, &exercise)
	if err != nil {
		return nil, auth.NewAuthErrorWithCause(auth.ErrInternal, "failed to load exercise", err)
	}
	if !found {
		return nil, auth.NewAuthError(auth.ErrInvalidField, "no outstanding exercise for this level")
	}

	solution := SolveDepreciation(&exercise)

	correct := map[string]bool{
		"year_expense":   withinTolerance(solution.YearExpense, answer.YearExpense),
		"end_book_value": withinTolerance(solution.EndBookValue, answer.EndBookValue),
	}

	result := &GradeResult{
		Correct:  correct,
		Expected: solution,
	}
	for _, ok := range correct {
		if ok {
			result.Score += 50
		}
	}
	result.Passed = result.Score >= 100

	if result.Passed {
		dropExercise(ctx, username, level)
	}

	s.logger.Info("Depreciation exercise graded",
		zap.String("username", username),
		zap.Int("level", level),
		zap.Float64("score", result.Score),
		zap.Bool("passed", result.Passed))
	return result, nil
}

// SolveDepreciation computes the expense of the target year and the book
// value at its end. Amounts are rounded to cents.
func SolveDepreciation(exercise *DepreciationExercise) *DepreciationSolution {
	expenses := depreciationSchedule(exercise)

	book := exercise.Cost
	var yearExpense decimal.Decimal
	for y := 0; y < exercise.TargetYear; y++ {
		yearExpense = expenses[y]
		book = book.Sub(yearExpense)
	}

	return &DepreciationSolution{
		YearExpense:  yearExpense.Round(2),
		EndBookValue: book.Round(2),
	}
}

// depreciationSchedule returns the per-year expenses for the full life.
func depreciationSchedule(exercise *DepreciationExercise) []decimal.Decimal {
	life := exercise.LifeYears
	base := exercise.Cost.Sub(exercise.Salvage)
	expenses := make([]decimal.Decimal, life)

	switch exercise.Method {
	case MethodSumOfYears:
		denominator := decimal.NewFromInt(int64(life * (life + 1) / 2))
		for y := 0; y < life; y++ {
			numerator := decimal.NewFromInt(int64(life - y))
			expenses[y] = base.Mul(numerator).Div(denominator)
		}

	case MethodDoubleDeclining:
		rate := decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(life)))
		book := exercise.Cost
		for y := 0; y < life; y++ {
			expense := book.Mul(rate)
			// Never depreciate below salvage value.
			if book.Sub(expense).LessThan(exercise.Salvage) {
				expense = book.Sub(exercise.Salvage)
			}
			expenses[y] = expense
			book = book.Sub(expense)
		}

	case MethodUnitsProduction:
		totalUnits := 0
		for _, u := range exercise.UnitsPerYear {
			totalUnits += u
		}
		perUnit := base.Div(decimal.NewFromInt(int64(totalUnits)))
		for y := 0; y < life; y++ {
			expenses[y] = perUnit.Mul(decimal.NewFromInt(int64(exercise.UnitsPerYear[y])))
		}

	default: // straight line
		expense := base.Div(decimal.NewFromInt(int64(life)))
		for y := 0; y < life; y++ {
			expenses[y] = expense
		}
	}

	return expenses
}
