package constant

// ServiceName 服务在链路追踪与日志里的统一标识。
const ServiceName = "publication_service"

// ServiceVersion 上报到追踪系统的服务版本。
const ServiceVersion = "1.0.0"
