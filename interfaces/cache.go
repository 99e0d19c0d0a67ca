package interfaces

import "github.com/customeros/mailadmin/internal/models"

type ListingCache interface {
	Get(identity models.Identity, folder string) (*models.Partition, bool)
	Put(identity models.Identity, folder string, entries []*models.EmailSummary, totalCount int) *models.Partition
	Invalidate(identity models.Identity, folder string)
	InvalidateAll(identity models.Identity) int
	FindEntry(identity models.Identity, folder string, uid uint32) (*models.EmailSummary, bool)
	AttachDetail(identity models.Identity, folder string, uid uint32, detail *models.EmailDetail) bool
	Sweep() int
	Len() int
	Shutdown()
}
