package restclient

import "context"

type Interface interface {
	Get(ctx context.Context, endpoint string, headers map[string]string) ([]byte, int, error)
	Post(ctx context.Context, endpoint string, body any, headers map[string]string) ([]byte, int, error)
}

var _ Interface = &RestClient{}
