package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Score 统一训练分数类型（保留 2 位小数）
type Score struct {
	decimal.Decimal
}

// NewScoreFromDecimal 从 decimal 创建分数
func NewScoreFromDecimal(value decimal.Decimal) Score {
	return Score{Decimal: value.Round(2)}
}

// ParseScore 从字符串解析分数
func ParseScore(raw string) (Score, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Score{}, err
	}
	return Score{Decimal: d.Round(2)}, nil
}

// MarshalJSON 统一输出 2 位小数的字符串
func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON 解析分数（字符串或数字）
func (s *Score) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return err
		}
		s.Decimal = d.Round(2)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	s.Decimal = decimal.NewFromFloat(f).Round(2)
	return nil
}

// Value 用于数据库写入
func (s Score) Value() (driver.Value, error) {
	return s.Decimal.Round(2).Value()
}

// Scan 用于数据库读取
func (s *Score) Scan(value interface{}) error {
	if err := s.Decimal.Scan(value); err != nil {
		return err
	}
	s.Decimal = s.Decimal.Round(2)
	return nil
}

// String 返回 2 位小数格式
func (s Score) String() string {
	return s.Decimal.Round(2).StringFixed(2)
}
