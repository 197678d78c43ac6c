package rag

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockModel struct {
	mock.Mock
}

func (m *mockModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	v, _ := args.Get(0).([][]float32)
	return v, args.Error(1)
}

type mockIndex struct {
	mock.Mock
}

func (m *mockIndex) Search(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	args := m.Called(ctx, vector, topK)
	v, _ := args.Get(0).([]Match)
	return v, args.Error(1)
}

func vec(n int) []float32 {
	return make([]float32, n)
}
