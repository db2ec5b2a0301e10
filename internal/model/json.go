// internal/model/json.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSONMap はスキーマを固定しない設定バッグ(フローのsettingsなど)をJSONカラムとして
// 永続化するための型です。
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("JSONMap.Value: %w", err)
	}
	return string(b), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("JSONMap.Scan: unsupported source type")
	}
	if len(b) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(b, m)
}

// Clone はJSON経由のディープコピーを返します。
// クローンしたフローのsettingsが元と共有されてはいけないため、浅いコピーは使わない。
func (m JSONMap) Clone() JSONMap {
	if m == nil {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return JSONMap{}
	}
	var out JSONMap
	if err := json.Unmarshal(b, &out); err != nil {
		return JSONMap{}
	}
	return out
}

// QuizQuestion はクイズ1問分の定義です
type QuizQuestion struct {
	Question      string   `json:"question"`
	Type          string   `json:"type,omitempty"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
}

// QuizData はモジュールに紐づくクイズ定義です。
// PassingScore が未設定の場合は DefaultPassingScore を適用します。
type QuizData struct {
	Questions    []QuizQuestion `json:"questions"`
	PassingScore *int           `json:"passing_score,omitempty"`
}

// DefaultPassingScore はクイズ合格基準の既定値
const DefaultPassingScore = 70

// EffectivePassingScore は適用される合格基準を返します
func (q *QuizData) EffectivePassingScore() int {
	if q == nil || q.PassingScore == nil {
		return DefaultPassingScore
	}
	return *q.PassingScore
}

func (q QuizData) Value() (driver.Value, error) {
	b, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("QuizData.Value: %w", err)
	}
	return string(b), nil
}

func (q *QuizData) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("QuizData.Scan: unsupported source type")
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, q)
}

// Clone はクイズ定義のディープコピーを返します
func (q *QuizData) Clone() *QuizData {
	if q == nil {
		return nil
	}
	out := &QuizData{
		Questions: make([]QuizQuestion, len(q.Questions)),
	}
	for i, question := range q.Questions {
		copied := question
		copied.Options = append([]string(nil), question.Options...)
		out.Questions[i] = copied
	}
	if q.PassingScore != nil {
		score := *q.PassingScore
		out.PassingScore = &score
	}
	return out
}
