package availability

import (
	"sort"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// DayMinutes правая граница суток
const DayMinutes = types.MinutesInDay

// Interval полуоткрытый интервал [Start, End) в минутах от начала суток
type Interval struct {
	Start int
	End   int
}

func (i Interval) Len() int {
	if i.End <= i.Start {
		return 0
	}
	return i.End - i.Start
}

func (i Interval) String() string {
	return types.FormatDuration(i.Start) + "-" + types.FormatDuration(i.End)
}

// IntervalSet отсортированный набор непересекающихся и несоприкасающихся интервалов
// Нулевое значение - пустой набор
type IntervalSet struct {
	items []Interval
}

// Normalize строит набор из произвольных интервалов:
// обрезает по границам суток, отбрасывает пустые, сортирует и склеивает
// пересекающиеся или соприкасающиеся (end_i >= start_{i+1})
func Normalize(raw []Interval) IntervalSet {
	items := make([]Interval, 0, len(raw))
	for _, in := range raw {
		if in.Start < 0 {
			in.Start = 0
		}
		if in.End > DayMinutes {
			in.End = DayMinutes
		}
		if in.End <= in.Start {
			continue
		}
		items = append(items, in)
	}
	if len(items) == 0 {
		return IntervalSet{}
	}

	sort.Slice(items, func(a, b int) bool {
		if items[a].Start != items[b].Start {
			return items[a].Start < items[b].Start
		}
		return items[a].End < items[b].End
	})

	merged := items[:1]
	for _, in := range items[1:] {
		last := &merged[len(merged)-1]
		if in.Start <= last.End {
			if in.End > last.End {
				last.End = in.End
			}
			continue
		}
		merged = append(merged, in)
	}

	return IntervalSet{items: merged}
}

// NewIntervalSet то же, что Normalize, для перечисления интервалов
func NewIntervalSet(intervals ...Interval) IntervalSet {
	return Normalize(intervals)
}

// Intervals копия интервалов набора
func (s IntervalSet) Intervals() []Interval {
	out := make([]Interval, len(s.items))
	copy(out, s.items)
	return out
}

func (s IntervalSet) IsEmpty() bool {
	return len(s.items) == 0
}

func (s IntervalSet) Len() int {
	return len(s.items)
}

// TotalMinutes суммарная длительность набора
func (s IntervalSet) TotalMinutes() int {
	total := 0
	for _, in := range s.items {
		total += in.Len()
	}
	return total
}

// Union объединение двух наборов
func (s IntervalSet) Union(other IntervalSet) IntervalSet {
	all := make([]Interval, 0, len(s.items)+len(other.items))
	all = append(all, s.items...)
	all = append(all, other.items...)
	return Normalize(all)
}

// Subtract часть s, не покрытая other. Интервал может распасться на несколько
func (s IntervalSet) Subtract(other IntervalSet) IntervalSet {
	if s.IsEmpty() || other.IsEmpty() {
		return IntervalSet{items: s.Intervals()}
	}

	out := make([]Interval, 0, len(s.items))
	j := 0
	for _, in := range s.items {
		cur := in.Start

		// пропускаем вычитаемые интервалы, закончившиеся до текущего
		for j < len(other.items) && other.items[j].End <= cur {
			j++
		}

		for k := j; k < len(other.items); k++ {
			cut := other.items[k]
			if cut.Start >= in.End {
				break
			}
			if cut.Start > cur {
				out = append(out, Interval{Start: cur, End: cut.Start})
			}
			if cut.End > cur {
				cur = cut.End
			}
			if cur >= in.End {
				break
			}
		}

		if cur < in.End {
			out = append(out, Interval{Start: cur, End: in.End})
		}
	}

	return Normalize(out)
}

// Intersect пересечение двух наборов
func (s IntervalSet) Intersect(other IntervalSet) IntervalSet {
	out := make([]Interval, 0)
	i, j := 0, 0
	for i < len(s.items) && j < len(other.items) {
		a, b := s.items[i], other.items[j]

		start := max(a.Start, b.Start)
		end := min(a.End, b.End)
		if start < end {
			out = append(out, Interval{Start: start, End: end})
		}

		if a.End < b.End {
			i++
		} else {
			j++
		}
	}
	return Normalize(out)
}

// Contains true, если [start, end) целиком лежит внутри одного интервала набора
// Слот, перекрывающий разрыв между интервалами, не помещается
func (s IntervalSet) Contains(start, end int) bool {
	if start >= end {
		return false
	}
	idx := sort.Search(len(s.items), func(i int) bool {
		return s.items[i].End >= end
	})
	return idx < len(s.items) && s.items[idx].Start <= start
}

// Overlaps true, если [start, end) пересекается с набором хотя бы на минуту
// Соприкосновение границами пересечением не считается
func (s IntervalSet) Overlaps(start, end int) bool {
	if start >= end {
		return false
	}
	idx := sort.Search(len(s.items), func(i int) bool {
		return s.items[i].End > start
	})
	return idx < len(s.items) && s.items[idx].Start < end
}

// Equal сравнивает наборы поинтервально
func (s IntervalSet) Equal(other IntervalSet) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for i := range s.items {
		if s.items[i] != other.items[i] {
			return false
		}
	}
	return true
}

func (s IntervalSet) String() string {
	parts := make([]string, len(s.items))
	for i, in := range s.items {
		parts[i] = in.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
