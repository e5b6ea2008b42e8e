// Package client is the Fenwick Go SDK: typed wrappers over the
// dispatcher's two gRPC services, one for registered users (Client) and
// one for collector workers (CollectorClient).
package client
