package global

import (
	"crm_pipeline/config"
	"crm_pipeline/internal/registry"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Deals        string // Deal và lịch sử giai đoạn (embedded)
	DealComments string // Bình luận trên deal
	Contacts     string // Liên hệ
	Activities   string // Hoạt động (call, email, meeting...)
	Counters     string // Bộ đếm sinh ID số tăng dần cho từng collection
}

// Các biến toàn cục
var MongoDB_Session *mongo.Client               // Phiên kết nối tới MongoDB (nil khi STORE_DRIVER=memory)
var ServerConfig *config.Configuration          // Cấu hình của server
var MongoDB_ColNames = DefaultCollectionNames() // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections

// DefaultCollectionNames trả về tên collection mặc định
func DefaultCollectionNames() MongoDB_CollectionName {
	return MongoDB_CollectionName{
		Deals:        "crm_deals",
		DealComments: "crm_deal_comments",
		Contacts:     "crm_contacts",
		Activities:   "crm_activities",
		Counters:     "crm_counters",
	}
}
