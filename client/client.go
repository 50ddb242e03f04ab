package client

import (
	"net/http"
	"time"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/challenai/hdao/thrift/hbase"
)

// DefaultTimeout bounds every HTTP round trip to a Thrift gateway.
const DefaultTimeout = time.Second * 10

// http Header attached to HBase client
// for example, some cloud service provider HBase instances need some authrization headers.
type Header struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// RoundTrip implemnt http RoundTripper interface
type RoundTripper struct {
	Headers []Header
	Base    http.RoundTripper
}

// RoundTrip implemnt http RoundTripper interface
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for _, header := range rt.Headers {
		req.Header.Add(header.Key, header.Value)
	}
	base := rt.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewHBaseClient creates a thrift client talking to the HBase Thrift2 gateway
// at addr over HTTP with the binary protocol.
func NewHBaseClient(addr string, headers []Header, timeout time.Duration) (*hbase.THBaseServiceClient, thrift.TTransport, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := http.Client{
		Transport: &RoundTripper{
			Headers: headers,
		},
		Timeout: timeout,
	}
	trans, err := thrift.NewTHttpClientWithOptions(addr, thrift.THttpClientOptions{Client: &httpClient})
	if err != nil {
		return nil, nil, err
	}
	err = trans.Open()
	if err != nil {
		return nil, nil, err
	}
	proto := thrift.NewTBinaryProtocol(trans, false, false)
	thriftClient := thrift.NewTStandardClient(proto, proto)
	return hbase.NewTHBaseServiceClient(thriftClient), trans, nil
}
