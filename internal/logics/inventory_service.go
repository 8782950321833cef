package logics

import (
	"context"
	"math/rand"

	"contaula-server/internal/auth"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Inventory valuation methods.
const (
	MethodWeightedAverage = "promedio_ponderado"
	MethodFIFO            = "fifo"

	LevelWeightedAverage = 1
	LevelFIFO            = 2
)

// answerTolerance is the acceptable rounding slack on submitted amounts.
var answerTolerance = decimal.NewFromFloat(0.01)

// InventoryLot is one batch of units at a single unit cost.
type InventoryLot struct {
	Units    int             `json:"units"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// InventoryExercise is one randomized periodic-inventory problem: a
// beginning balance, a few purchases, and one sale to value.
type InventoryExercise struct {
	ID        string         `json:"id"`
	Level     int            `json:"level"`
	Method    string         `json:"method"`
	Beginning InventoryLot   `json:"beginning"`
	Purchases []InventoryLot `json:"purchases"`
	UnitsSold int            `json:"units_sold"`
}

// InventorySolution values the sale and the remaining stock.
type InventorySolution struct {
	COGS            decimal.Decimal `json:"cogs"`
	EndingInventory decimal.Decimal `json:"ending_inventory"`
}

// InventoryAnswer is what the student submits.
type InventoryAnswer struct {
	COGS            decimal.Decimal `json:"cogs"`
	EndingInventory decimal.Decimal `json:"ending_inventory"`
}

// GradeResult is shared by both exercise graders.
type GradeResult struct {
	Score    float64         `json:"score"`
	Passed   bool            `json:"passed"`
	Correct  map[string]bool `json:"correct"`
	Expected interface{}     `json:"expected"`
}

// InventoryService generates and grades the two inventory-valuation levels.
type InventoryService struct {
	logger *zap.Logger
}

func NewInventoryService(logger *zap.Logger) *InventoryService {
	return &InventoryService{logger: logger}
}

func inventoryMethodForLevel(level int) (string, error) {
	switch level {
	case LevelWeightedAverage:
		return MethodWeightedAverage, nil
	case LevelFIFO:
		return MethodFIFO, nil
	}
	return "", auth.NewAuthError(auth.ErrInvalidField, "no inventory exercise for this level")
}

// Generate builds a fresh randomized exercise for the level, caches it for
// grading and returns it.
func (s *InventoryService) Generate(ctx context.Context, username string, level int) (*InventoryExercise, error) {
	method, err := inventoryMethodForLevel(level)
	if err != nil {
		return nil, err
	}

	exercise := &InventoryExercise{
		ID:     uuid.NewString(),
		Level:  level,
		Method: method,
		Beginning: InventoryLot{
			Units:    (rand.Intn(10) + 5) * 10,               // 50..140
			UnitCost: decimal.NewFromInt(int64(rand.Intn(12) + 8)), // 8..19
		},
	}

	purchases := rand.Intn(2) + 2 // 2..3
	totalUnits := exercise.Beginning.Units
	cost := exercise.Beginning.UnitCost
	for i := 0; i < purchases; i++ {
		// Costs drift so the methods actually diverge.
		cost = cost.Add(decimal.NewFromInt(int64(rand.Intn(5) - 1)))
		if cost.LessThan(decimal.NewFromInt(1)) {
			cost = decimal.NewFromInt(1)
		}
		lot := InventoryLot{
			Units:    (rand.Intn(8) + 3) * 10, // 30..100
			UnitCost: cost,
		}
		exercise.Purchases = append(exercise.Purchases, lot)
		totalUnits += lot.Units
	}

	exercise.UnitsSold = totalUnits * (rand.Intn(3) + 6) / 10 // 60..80%

	if err := cacheExercise(ctx, username, level, exercise); err != nil {
		return nil, auth.NewAuthErrorWithCause(auth.ErrInternal, "failed to cache exercise", err)
	}

	s.logger.Info("Inventory exercise generated",
		zap.String("username", username),
		zap.Int("level", level),
		zap.String("method", method),
		zap.String("exerciseId", exercise.ID))
	return exercise, nil
}

// Grade scores an answer against the outstanding exercise for the level.
func (s *InventoryService) Grade(ctx context.Context, username string, level int, answer InventoryAnswer) (*GradeResult, error) {
	if _, err := inventoryMethodForLevel(level); err != nil {
		return nil, err
	}

	var exercise InventoryExercise
	found, err := loadExercise(ctx, username, level, &exercise)
	if err != nil {
		return nil, auth.NewAuthErrorWithCause(auth.ErrInternal, "failed to load exercise", err)
	}
	if !found {
		return nil, auth.NewAuthError(auth.ErrInvalidField, "no outstanding exercise for this level")
	}

	solution := SolveInventory(&exercise)

	correct := map[string]bool{
		"cogs":             withinTolerance(solution.COGS, answer.COGS),
		"ending_inventory": withinTolerance(solution.EndingInventory, answer.EndingInventory),
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

	s.logger.Info("Inventory exercise graded",
		zap.String("username", username),
		zap.Int("level", level),
		zap.Float64("score", result.Score),
		zap.Bool("passed", result.Passed))
	return result, nil
}

// SolveInventory values the exercise under its method. Amounts are rounded
// to cents.
func SolveInventory(exercise *InventoryExercise) *InventorySolution {
	switch exercise.Method {
	case MethodFIFO:
		return solveFIFO(exercise)
	default:
		return solveWeightedAverage(exercise)
	}
}

func solveWeightedAverage(exercise *InventoryExercise) *InventorySolution {
	totalUnits := decimal.NewFromInt(int64(exercise.Beginning.Units))
	totalCost := exercise.Beginning.UnitCost.Mul(totalUnits)
	for _, lot := range exercise.Purchases {
		units := decimal.NewFromInt(int64(lot.Units))
		totalUnits = totalUnits.Add(units)
		totalCost = totalCost.Add(lot.UnitCost.Mul(units))
	}

	average := totalCost.Div(totalUnits)
	sold := decimal.NewFromInt(int64(exercise.UnitsSold))

	return &InventorySolution{
		COGS:            average.Mul(sold).Round(2),
		EndingInventory: average.Mul(totalUnits.Sub(sold)).Round(2),
	}
}

func solveFIFO(exercise *InventoryExercise) *InventorySolution {
	lots := append([]InventoryLot{exercise.Beginning}, exercise.Purchases...)

	remaining := exercise.UnitsSold
	cogs := decimal.Zero
	ending := decimal.Zero
	for _, lot := range lots {
		consumed := lot.Units
		if consumed > remaining {
			consumed = remaining
		}
		cogs = cogs.Add(lot.UnitCost.Mul(decimal.NewFromInt(int64(consumed))))
		ending = ending.Add(lot.UnitCost.Mul(decimal.NewFromInt(int64(lot.Units - consumed))))
		remaining -= consumed
	}

	return &InventorySolution{
		COGS:            cogs.Round(2),
		EndingInventory: ending.Round(2),
	}
}

func withinTolerance(expected, got decimal.Decimal) bool {
	return expected.Sub(got).Abs().LessThanOrEqual(answerTolerance)
}
