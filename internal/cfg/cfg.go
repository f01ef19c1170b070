package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/jimlawless/whereami"
)

// Config — конфигурация API-сервера.
type Config struct {
	Http    *HTTPConfig
	Qdrant  *QdrantCfg
	Encoder *EncoderCfg
	Storage *StorageCfg
}

// IngestionConfig — конфигурация offline-пайплайна построения индекса.
type IngestionConfig struct {
	Qdrant *QdrantCfg
	Minio  *MinIOCfg
	Kafka  *KafkaCfg
	Ingest *IngestCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type QdrantCfg struct {
	Host           string
	Port           int
	ApiKey         string
	CollectionName string // имя коллекции в Qdrant
	UseTLS         bool
	VectorSize     uint64
	SearchTimeout  time.Duration // таймаут онлайн-поиска
	WriteTimeout   time.Duration // таймаут батчевой записи при ингестии
}

// EncoderCfg описывает подключение к внешнему encoder-сервису (CLIP).
// Запросы кодирования не ретраятся: у онлайн-пути одна попытка на запрос.
type EncoderCfg struct {
	Addr           string
	MaxConcurrent  int
	RequestTimeout time.Duration
}

// StorageCfg — публичный базовый URL объектного хранилища с изображениями товаров.
// BaseURL может быть пустым: тогда image_url в выдаче всегда null.
type StorageCfg struct {
	BaseURL string
}

type MinIOCfg struct {
	MinioEndpoint     string
	BucketName        string
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	// Ключи объектов с выгрузками эмбеддингов и каталогом
	ImageEmbeddingsKey string
	TextEmbeddingsKey  string
	ProductIDsKey      string
	CatalogKey         string
}

type KafkaCfg struct {
	Topic   string
	Brokers []string
}

// IngestCfg — параметры фьюжна и батчевой записи.
type IngestCfg struct {
	BatchSize      int
	MaxRetries     int
	RetryBaseDelay time.Duration
	ImageWeight    float32
	TextWeight     float32
}

// Load безопасно загружает конфигурацию API-сервера и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	storage := loadStorageCfg(log)

	return &Config{
		Http:    http,
		Qdrant:  qdrant,
		Encoder: loadEncoderCfg(),
		Storage: storage,
	}, nil
}

// LoadIngestion загружает конфигурацию offline-пайплайна.
func LoadIngestion(log logger.Logger) (*IngestionConfig, error) {
	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ingest, err := loadIngestCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &IngestionConfig{
		Qdrant: qdrant,
		Minio:  minio,
		Kafka:  kafka,
		Ingest: ingest,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8000"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 30 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadQdrantCfg(log logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultUseTLS         = false
		defaultVectorSize     = "512"
		defaultSearchTimeout  = 20 * time.Second
		defaultWriteTimeout   = 120 * time.Second
	)

	host := getEnv("QDRANT_HOST")
	if host == "" {
		err := fmt.Errorf("QDRANT_HOST is required")
		log.Errorf(err, "missing QDRANT_HOST")
		return nil, err
	}

	collection := getEnv("COLLECTION_NAME")
	if collection == "" {
		err := fmt.Errorf("COLLECTION_NAME is required")
		log.Errorf(err, "missing COLLECTION_NAME")
		return nil, err
	}

	port, err := strconv.Atoi(getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort))
	if err != nil {
		log.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		log.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	vectorSize, err := strconv.ParseUint(getEnvOrDefault("VECTOR_SIZE", defaultVectorSize), 10, 64)
	if err != nil {
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	searchTimeout, err := parseDurationEnv("QDRANT_SEARCH_TIMEOUT", defaultSearchTimeout)
	if err != nil {
		log.Errorf(err, "invalid QDRANT_SEARCH_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("QDRANT_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid QDRANT_WRITE_TIMEOUT")
		return nil, err
	}

	return &QdrantCfg{
		Host:           host,
		Port:           port,
		ApiKey:         getEnv("QDRANT_API_KEY"),
		CollectionName: collection,
		UseTLS:         useTLS,
		VectorSize:     vectorSize,
		SearchTimeout:  searchTimeout,
		WriteTimeout:   writeTimeout,
	}, nil
}

func loadEncoderCfg() *EncoderCfg {
	const (
		defaultHost           = "encoder-service"
		defaultPort           = "9000"
		defaultMaxConcurrent  = 8
		defaultRequestTimeout = 20 * time.Second
	)

	host := getEnvOrDefault("ENCODER_HOST", defaultHost)
	port := getEnvOrDefault("ENCODER_PORT", defaultPort)

	return &EncoderCfg{
		Addr:           "http://" + host + ":" + port,
		MaxConcurrent:  defaultMaxConcurrent,
		RequestTimeout: defaultRequestTimeout,
	}
}

func loadStorageCfg(log logger.Logger) *StorageCfg {
	baseURL := strings.TrimSuffix(getEnv("S3_BUCKET_BASE_URL"), "/")
	if baseURL == "" {
		log.Warnf("S3_BUCKET_BASE_URL is not set, image urls will be omitted from search results")
	}

	return &StorageCfg{BaseURL: baseURL}
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL             = false
		defaultEndpoint           = "minio:9000"
		defaultImageEmbeddingsKey = "embeddings/image_embeddings_aligned.npy"
		defaultTextEmbeddingsKey  = "embeddings/text_embeddings_aligned.npy"
		defaultProductIDsKey      = "embeddings/product_ids_aligned.npy"
		defaultCatalogKey         = "data/styles.csv"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	bucket := getEnv("BUCKET_NAME")
	if bucket == "" {
		err := fmt.Errorf("BUCKET_NAME is required")
		log.Errorf(err, "missing BUCKET_NAME")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:      getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:         bucket,
		MinioRootUser:      getEnv("MINIO_ROOT_USER"),
		MinioRootPassword:  getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:        useSSL,
		ImageEmbeddingsKey: getEnvOrDefault("IMAGE_EMBEDDINGS_KEY", defaultImageEmbeddingsKey),
		TextEmbeddingsKey:  getEnvOrDefault("TEXT_EMBEDDINGS_KEY", defaultTextEmbeddingsKey),
		ProductIDsKey:      getEnvOrDefault("PRODUCT_IDS_KEY", defaultProductIDsKey),
		CatalogKey:         getEnvOrDefault("PRODUCT_CATALOG_KEY", defaultCatalogKey),
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	brokerStr := getEnv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	topic := getEnv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
	}

	return &KafkaCfg{
		Brokers: strings.Split(brokerStr, ","),
		Topic:   topic,
	}, nil
}

func loadIngestCfg(log logger.Logger) (*IngestCfg, error) {
	const (
		defaultBatchSize      = 100
		defaultMaxRetries     = 3
		defaultRetryBaseDelay = 5 * time.Second
		defaultImageWeight    = "0.6"
		defaultTextWeight     = "0.4"
	)

	batchSize, err := parseIntEnv("INGEST_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		return nil, e.Wrap("INGEST_BATCH_SIZE", err)
	}

	maxRetries, err := parseIntEnv("INGEST_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		return nil, e.Wrap("INGEST_MAX_RETRIES", err)
	}

	retryBaseDelay, err := parseDurationEnv("INGEST_RETRY_BASE_DELAY", defaultRetryBaseDelay)
	if err != nil {
		log.Errorf(err, "invalid INGEST_RETRY_BASE_DELAY")
		return nil, err
	}

	imageWeight, err := parseFloatEnv("FUSION_IMAGE_WEIGHT", defaultImageWeight)
	if err != nil {
		log.Errorf(err, "invalid FUSION_IMAGE_WEIGHT")
		return nil, err
	}

	textWeight, err := parseFloatEnv("FUSION_TEXT_WEIGHT", defaultTextWeight)
	if err != nil {
		log.Errorf(err, "invalid FUSION_TEXT_WEIGHT")
		return nil, err
	}

	return &IngestCfg{
		BatchSize:      batchSize,
		MaxRetries:     maxRetries,
		RetryBaseDelay: retryBaseDelay,
		ImageWeight:    imageWeight,
		TextWeight:     textWeight,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func parseFloatEnv(key string, defaultValue string) (float32, error) {
	v := getEnvOrDefault(key, defaultValue)

	floatValue, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, e.ErrIncorrectEnvVariable
	}

	return float32(floatValue), nil
}
