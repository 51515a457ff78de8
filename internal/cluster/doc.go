// See types.go for PostJSON and PostJSONRetry, the functions this
// package exports.
package cluster
