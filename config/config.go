package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Các giá trị của STORE_DRIVER
const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
type Configuration struct {
	InitMode              bool   `env:"INITMODE" envDefault:"false"`                  // Seed dữ liệu demo khi khởi động
	Address               string `env:"ADDRESS" envDefault:":8080"`                   // Địa chỉ server
	StoreDriver           string `env:"STORE_DRIVER" envDefault:"mongo"`              // mongo | memory
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI"`                       // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"crm_pipeline"`     // Tên cơ sở dữ liệu
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`                  // Các origins được phép (phân cách bởi dấu phẩy)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`    // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`              // Số request tối đa trong window
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`            // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`         // Bật/tắt rate limiting
	StoreTimeoutSeconds   int    `env:"STORE_TIMEOUT_SECONDS" envDefault:"10"`        // Timeout mỗi lời gọi kho dữ liệu
	ReportTimeZone        string `env:"REPORT_TIMEZONE" envDefault:"UTC"`             // Múi giờ dùng cho nhãn tháng và cửa sổ ngày
	DefaultRangeDays      int    `env:"REPORT_DEFAULT_RANGE_DAYS" envDefault:"30"`    // Cửa sổ mặc định của dashboard
	DefaultRevenueMonths  int    `env:"REPORT_DEFAULT_REVENUE_MONTHS" envDefault:"6"` // Số tháng mặc định của biểu đồ doanh thu
	BoardRefreshSeconds   int    `env:"BOARD_REFRESH_SECONDS" envDefault:"15"`        // Chu kỳ kiểm tra board cần tải lại
	BoardMaxAgeSeconds    int    `env:"BOARD_MAX_AGE_SECONDS" envDefault:"300"`       // Buộc tải lại board sau khoảng này (0 = tắt)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Đi ngược lên cho tới khi gặp config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", goEnv))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc cấu hình từ file env (nếu có) rồi từ biến môi trường.
// File env là tùy chọn: thiếu file thì chỉ dùng biến môi trường và giá trị mặc định.
func NewConfig() (*Configuration, error) {
	if envPath := getEnvPath(); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("không thể load file env tại %s: %w", envPath, err)
			}
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("lỗi khi parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate kiểm tra các ràng buộc giữa các trường cấu hình.
func (c *Configuration) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreDriverMongo:
		if c.MongoDB_ConnectionURI == "" {
			return fmt.Errorf("MONGODB_CONNECTION_URI là bắt buộc khi STORE_DRIVER=mongo")
		}
		if c.MongoDB_DBName == "" {
			return fmt.Errorf("MONGODB_DBNAME là bắt buộc khi STORE_DRIVER=mongo")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER không hợp lệ: %q (mongo | memory)", c.StoreDriver)
	}
	if c.StoreTimeoutSeconds <= 0 {
		return fmt.Errorf("STORE_TIMEOUT_SECONDS phải > 0")
	}
	if c.DefaultRangeDays <= 0 || c.DefaultRevenueMonths <= 0 {
		return fmt.Errorf("REPORT_DEFAULT_RANGE_DAYS và REPORT_DEFAULT_REVENUE_MONTHS phải > 0")
	}
	if _, err := c.ReportLocation(); err != nil {
		return err
	}
	if c.BoardRefreshSeconds <= 0 || c.BoardMaxAgeSeconds < 0 {
		return fmt.Errorf("BOARD_REFRESH_SECONDS phải > 0 và BOARD_MAX_AGE_SECONDS phải >= 0")
	}
	return nil
}

// CORSOrigins tách CORS_Origins thành danh sách.
func (c *Configuration) CORSOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORS_Origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// ReportLocation múi giờ của REPORT_TIMEZONE, rỗng là UTC.
func (c *Configuration) ReportLocation() (*time.Location, error) {
	if strings.TrimSpace(c.ReportTimeZone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(c.ReportTimeZone))
	if err != nil {
		return nil, fmt.Errorf("REPORT_TIMEZONE không hợp lệ: %w", err)
	}
	return loc, nil
}
