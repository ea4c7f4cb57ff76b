package collision_test

import (
	"context"
	"testing"

	"github.com/Sumatoshi-tech/hashprobe/pkg/collision"
)

func BenchmarkFind_DefaultTable(b *testing.B) {
	f := collision.NewFinder()
	ctx := context.Background()

	b.ReportAllocs()

	for b.Loop() {
		_, err := f.Find(ctx, 10_000, collision.NewSeededSource(1))
		if err != nil {
			b.Fatal(err)
		}
	}
}
