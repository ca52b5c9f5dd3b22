package config

import "errors"

var ErrInvalidConfig = errors.New("invalid config")
var ErrMissingRedisURL = errors.New("redis url cannot be empty")
var ErrMissingMongoURL = errors.New("mongo url cannot be empty")
