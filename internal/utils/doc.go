// Package utils holds the ambient plumbing shared by every gitutils command:
// the viper-backed ConfigurationLoader, the zap LoggerFactory, and the
// CommandContextAccessor that carries the resolved configuration file and
// external command timeout through cobra contexts.
package utils
