package rag

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

type QdrantConfig struct {
	Host       string `yaml:"host" validate:"required"`
	Port       int    `yaml:"port" validate:"gt=0,lte=65535"`
	Collection string `yaml:"collection" validate:"required"`
	APIKey     string `yaml:"api_key"`
	UseTLS     bool   `yaml:"use_tls"`
}

func DefaultQdrantConfig() QdrantConfig {
	host := os.Getenv("QDRANT_URL")
	port, _ := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 6334
	}
	return QdrantConfig{Host: host, Port: port, Collection: "portfolio"}
}

var _ VectorIndex = &QdrantStore{}

type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

func NewQdrantStore(cfg QdrantConfig) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant client: %w", err)
	}
	return &QdrantStore{client: client, collection: cfg.Collection}, nil
}

// EnsureCollection creates the collection when missing and reports whether it
// already existed.
func (s *QdrantStore) EnsureCollection(ctx context.Context, vectorSize int) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}
	if err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(vectorSize),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	}); err != nil {
		return false, fmt.Errorf("create collection: %w", err)
	}
	return false, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func (s *QdrantStore) UpsertBatch(ctx context.Context, docs []VectorDoc) error {
	pts := make([]*qdrant.PointStruct, len(docs))
	for i, d := range docs {
		id := d.ID
		if id == "" {
			id = uuid.New().String()
		}

		payload := map[string]any{textKey: d.Content}
		for k, v := range d.Metadata {
			payload[k] = v
		}

		pts[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(id),
			Vectors: qdrant.NewVectors(d.Vector...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         pts,
	})
	return err
}

func (s *QdrantStore) Search(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	limit := uint64(topK)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Limit:          &limit,
		Query:          qdrant.NewQuery(vector...),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	out := make([]Match, 0, len(resp))
	for _, r := range resp {
		out = append(out, Match{
			ID:       pointID(r.Id),
			Score:    float64(r.Score),
			Metadata: payloadToMap(r.Payload),
		})
	}
	return out, nil
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch x := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return x.Uuid
	case *qdrant.PointId_Num:
		return strconv.FormatUint(x.Num, 10)
	}
	return ""
}

func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	md := make(map[string]any, len(payload))
	for key, v := range payload {
		md[key] = convertQdrantValue(v)
	}
	return md
}

func convertQdrantValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_ListValue:
		out := make([]any, len(val.ListValue.Values))
		for i, lv := range val.ListValue.Values {
			out[i] = convertQdrantValue(lv)
		}
		return out
	case *qdrant.Value_StructValue:
		out := make(map[string]any)
		for k, nv := range val.StructValue.Fields {
			out[k] = convertQdrantValue(nv)
		}
		return out
	}
	return nil
}
