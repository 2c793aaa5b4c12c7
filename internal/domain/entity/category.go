package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Category — предметная область вопроса экзамена
type Category string

// Константы категорий экзамена
const (
	CategoryBloodBank    Category = "BloodBank"
	CategoryChemistry    Category = "Chemistry"
	CategoryHematology   Category = "Hematology"
	CategoryMicrobiology Category = "Microbiology"
	CategoryUrinalysis   Category = "Urinalysis"
	CategoryImmunology   Category = "Immunology"
	CategoryLabOps       Category = "LabOps"
)

// TotalExamItems — фиксированная длина экзамена (сумма квот по категориям)
const TotalExamItems = 100

// AllCategories перечисляет категории в каноническом порядке.
// Порядок важен только для детерминированной сборки blueprint до перемешивания.
var AllCategories = []Category{
	CategoryBloodBank,
	CategoryChemistry,
	CategoryHematology,
	CategoryMicrobiology,
	CategoryUrinalysis,
	CategoryImmunology,
	CategoryLabOps,
}

// CategoryQuota — фиксированная квота каждой категории в полном экзамене.
// Сумма всегда равна TotalExamItems.
var CategoryQuota = map[Category]int{
	CategoryBloodBank:    20,
	CategoryChemistry:    20,
	CategoryHematology:   20,
	CategoryMicrobiology: 20,
	CategoryUrinalysis:   8,
	CategoryImmunology:   7,
	CategoryLabOps:       5,
}

// ParseCategory проверяет и возвращает категорию по строковому значению
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := CategoryQuota[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// IsValid проверяет, что категория входит в квотную таблицу
func (c Category) IsValid() bool {
	_, ok := CategoryQuota[c]
	return ok
}

// CategoryArray - пользовательский тип для хранения blueprint в JSONB
type CategoryArray []Category

// Scan реализует интерфейс sql.Scanner для CategoryArray
// Используется GORM для чтения JSONB данных из базы
func (a *CategoryArray) Scan(value interface{}) error {
	if value == nil {
		*a = CategoryArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*a = CategoryArray{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Value реализует интерфейс driver.Valuer для CategoryArray
// Используется GORM для записи CategoryArray в JSONB в базе
func (a CategoryArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(a)
}

// Counts возвращает количество вхождений каждой категории
func (a CategoryArray) Counts() map[Category]int {
	counts := make(map[Category]int, len(AllCategories))
	for _, c := range a {
		counts[c]++
	}
	return counts
}
