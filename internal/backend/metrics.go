package backend

import (
	"context"
	"strings"
)

type MetricsRequest struct {
	FileID         string   `json:"fileId"`
	FileTypeFilter []string `json:"fileTypeFilter,omitempty"`
	MetricsType    string   `json:"metricsType"`
}

type MetricsClient struct {
	getMetricsTypeNames *unary[Empty, []MetricsTypeName]
	getMetrics          *unary[MetricsRequest, MetricsNode]
}

func NewMetricsClient(t Transport) *MetricsClient {
	return &MetricsClient{
		getMetricsTypeNames: newUnary[Empty, []MetricsTypeName](t, "getMetricsTypeNames"),
		getMetrics:          newUnary[MetricsRequest, MetricsNode](t, "getMetrics"),
	}
}

func (c *MetricsClient) GetMetricsTypeNames(ctx context.Context) ([]MetricsTypeName, error) {
	out, err := c.getMetricsTypeNames.call(ctx, &Empty{})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *MetricsClient) GetMetrics(ctx context.Context, fileID string, fileTypes []string, metricsType string) (MetricsNode, error) {
	out, err := c.getMetrics.call(ctx, &MetricsRequest{
		FileID:         strings.TrimSpace(fileID),
		FileTypeFilter: fileTypes,
		MetricsType:    strings.TrimSpace(metricsType),
	})
	if err != nil {
		return MetricsNode{}, err
	}
	return *out, nil
}
