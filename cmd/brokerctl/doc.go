// Package broker provides a proving broker for a zero-knowledge proof market.
//
// The broker receives priced proof requests, decides which ones it can prove
// profitably and in time, locks them on the market contract (putting stake at
// risk), and records the resulting orders in its database for the proving
// pipeline to pick up.
//
// # Architecture
//
// The service is organized into several packages:
//
//   - pkg/monitor: Order monitor (order selection, capacity limits, locking)
//   - pkg/market: Market contract client
//   - pkg/chain: Chain head and gas price monitor
//   - pkg/store: Order persistence
//   - pkg/storage: Guest image and input fetching (http, file, s3)
//   - pkg/events: Order lifecycle event log
//   - pkg/server: Status API
//   - pkg/config: Configuration management
//   - pkg/task: Task supervision
//
// # Quick Start
//
//	# Run database migrations
//	brokerctl db migrate
//
//	# Start the broker
//	brokerctl server
//
//	# Issue an API token for the status API
//	brokerctl token --subject ops
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - BROKER_PRIVATE_KEY: Hex-encoded private key used to sign lock transactions
//   - BROKER_API_SECRET: HMAC secret for status API tokens
//   - BROKER_CONFIG_PATH: Configuration directory (default: /etc/broker)
//   - BROKER_LOG_LEVEL: Log level (debug, info, warn, error)
//   - EVENTS_DATABASE_URL: Optional separate database for the event log
//   - S3_ACCESS, S3_SECRET, S3_BUCKET, S3_URL, AWS_REGION, S3_NO_PRESIGNED:
//     Object storage access for guest images and inputs
package main
