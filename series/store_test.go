package series

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestStoreAddAndGet(t *testing.T) {
	s := NewStore(10)

	s.Add("600000", day(1), 10.0)
	s.Add("600000", day(2), 11.0)
	s.Add("600036", day(1), 30.0)

	pts := s.Get("600000")
	assert.Len(t, pts, 2)
	assert.Equal(t, 10.0, pts[0].Price)
	assert.Equal(t, 11.0, pts[1].Price)

	assert.Empty(t, s.Get("unknown"))
}

func TestStoreCapacityEvictsOldest(t *testing.T) {
	s := NewStore(3)

	for d := 1; d <= 5; d++ {
		s.Add("X", day(d), float64(d))
	}

	pts := s.Get("X")
	assert.Len(t, pts, 3)
	assert.Equal(t, 3.0, pts[0].Price)
	assert.Equal(t, 5.0, pts[2].Price)
}

func TestStoreDuplicateTimestampUpdatesInPlace(t *testing.T) {
	s := NewStore(10)

	s.Add("X", day(1), 10.0)
	s.Add("X", day(2), 11.0)
	s.Add("X", day(1), 12.0)

	pts := s.Get("X")
	assert.Len(t, pts, 2)
	assert.Equal(t, 12.0, pts[0].Price)
	assert.Equal(t, 11.0, pts[1].Price)
}

func TestStoreLatest(t *testing.T) {
	s := NewStore(10)

	_, ok := s.Latest("X")
	assert.False(t, ok)

	s.Add("X", day(1), 10.0)
	s.Add("X", day(2), 11.5)

	price, ok := s.Latest("X")
	assert.True(t, ok)
	assert.Equal(t, 11.5, price)
}

func TestStorePrices(t *testing.T) {
	s := NewStore(10)
	s.Add("X", day(1), 1.0)
	s.Add("X", day(2), 2.0)
	s.Add("X", day(3), 3.0)

	assert.Equal(t, []float64{1, 2, 3}, s.Prices("X"))
}

func TestStoreAllReturnsCopies(t *testing.T) {
	s := NewStore(10)
	s.Add("X", day(1), 10.0)

	all := s.All()
	all["X"][0].Price = 99.0
	all["Y"] = []Point{{Time: day(1), Price: 1}}

	assert.Equal(t, 10.0, s.Get("X")[0].Price)
	assert.Empty(t, s.Get("Y"))
}

func TestStoreClear(t *testing.T) {
	s := NewStore(10)
	s.Add("X", day(1), 10.0)
	s.Add("Y", day(1), 20.0)

	s.Clear()

	assert.Equal(t, 0, s.Len("X"))
	assert.Equal(t, 0, s.Len("Y"))
}

func TestStoreConcurrentWriters(t *testing.T) {
	s := NewStore(50)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Add("X", day(1).Add(time.Duration(g*1000+i)*time.Second), float64(i))
				s.Latest("X")
				s.All()
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len("X"))
}
