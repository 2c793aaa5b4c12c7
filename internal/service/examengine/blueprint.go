package examengine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/yourusername/mls-exam-api/internal/domain/entity"
)

// BlueprintGenerator строит квотную последовательность категорий сессии.
// Источник случайности внедряется явно, чтобы тесты могли задать seed.
type BlueprintGenerator struct {
	rng *rand.Rand
	mu  sync.Mutex // rand.Rand не потокобезопасен, сессии стартуют конкурентно
}

// NewBlueprintGenerator создаёт новый генератор blueprint.
// При rng == nil используется генератор, взведённый от текущего времени.
func NewBlueprintGenerator(rng *rand.Rand) *BlueprintGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &BlueprintGenerator{rng: rng}
}

// Generate возвращает последовательность из TotalExamItems категорий:
// каждая категория входит ровно столько раз, сколько указано в её квоте,
// порядок — равномерно случайная перестановка (Fisher–Yates).
func (g *BlueprintGenerator) Generate() entity.CategoryArray {
	blueprint := make(entity.CategoryArray, 0, entity.TotalExamItems)
	for _, category := range entity.AllCategories {
		for i := 0; i < entity.CategoryQuota[category]; i++ {
			blueprint = append(blueprint, category)
		}
	}

	g.mu.Lock()
	for i := len(blueprint) - 1; i > 0; i-- {
		j := g.rng.Intn(i + 1)
		blueprint[i], blueprint[j] = blueprint[j], blueprint[i]
	}
	g.mu.Unlock()

	return blueprint
}
