package service

import (
	"context"
	"log"
	"time"

	"imagevault/config"
	"imagevault/internal/dto"
	"imagevault/internal/errs"
	"imagevault/internal/repo"
	"imagevault/internal/storage"
	"imagevault/internal/task"
	"imagevault/model"

	"gorm.io/gorm"
)

// NotReadyError signals that an upload exists but hasn't finished
// processing yet; the HTTP layer maps this to a 202 (§6).
type NotReadyError struct {
	Status         string
	ProcessingTime float64
}

func (e *NotReadyError) Error() string {
	return "upload not ready: " + e.Status
}

// AttachResult is the resolved binding returned by AttachToProduct.
type AttachResult struct {
	ImageID   uint64
	ProductID uint64
	IsPrimary bool
}

// AttachToProduct binds a completed upload's image to a product with
// primary-image semantics (§4.7), handling the race where a client
// attaches before processing has finished and the failed→uploading
// recovery path.
func AttachToProduct(ctx context.Context, req dto.AttachToProductRequest) (*AttachResult, error) {
	upload, err := GetUploadByUploadID(ctx, req.UploadID)
	if err != nil {
		return nil, err
	}
	var product model.Product
	if err := repo.Db.WithContext(ctx).Where("sku = ?", req.SKU).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.New(errs.NotFound, "product not found")
		}
		return nil, errs.Wrap(errs.InternalIO, "load product", err)
	}

	if err := ensureReady(ctx, upload); err != nil {
		return nil, err
	}

	image, err := resolveOriginalImage(ctx, upload)
	if err != nil {
		return nil, err
	}

	var result AttachResult
	err = repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link model.ProductImage
		err := tx.Where("product_id = ? AND image_id = ?", product.ID, image.ID).First(&link).Error
		switch {
		case err == nil:
			if req.IsPrimary {
				if err := clearPrimaryLinks(tx, product.ID); err != nil {
					return err
				}
				if err := tx.Model(&link).Update("is_primary", true).Error; err != nil {
					return err
				}
				if err := tx.Model(&product).Update("primary_image_id", image.ID).Error; err != nil {
					return err
				}
				link.IsPrimary = true
			}
		case err == gorm.ErrRecordNotFound:
			link = model.ProductImage{
				ProductID: product.ID,
				ImageID:   image.ID,
				IsPrimary: req.IsPrimary,
			}
			if req.IsPrimary {
				if err := clearPrimaryLinks(tx, product.ID); err != nil {
					return err
				}
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
			if req.IsPrimary {
				if err := tx.Model(&product).Update("primary_image_id", image.ID).Error; err != nil {
					return err
				}
			}
		default:
			return err
		}

		result = AttachResult{ImageID: image.ID, ProductID: product.ID, IsPrimary: link.IsPrimary}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.InternalIO, "attach image to product", err)
	}
	return &result, nil
}

// clearPrimaryLinks clears every other primary flag for product,
// the "clear others, then set this one" half of the invariant (§4.7).
func clearPrimaryLinks(tx *gorm.DB, productID uint64) error {
	return tx.Model(&model.ProductImage{}).
		Where("product_id = ? AND is_primary = ?", productID, true).
		Update("is_primary", false).Error
}

// ensureReady implements §4.7 step 2: complete uploads proceed;
// uploading/assembling uploads signal not-ready unless stuck past the
// configured threshold, in which case they're declared failed; failed
// uploads are resurrected if their assembled blob still exists.
func ensureReady(ctx context.Context, upload *model.Upload) error {
	switch upload.Status {
	case model.StatusComplete:
		return nil
	case model.StatusFailed:
		if upload.Path != "" && storage.Default.Exists(upload.Path) {
			if err := setStatus(ctx, upload, model.StatusUploading); err != nil {
				return err
			}
			if err := task.CreateProcessingJob(ctx, upload.ID); err != nil {
				return errs.Wrap(errs.InternalIO, "re-enqueue processing job", err)
			}
			return &NotReadyError{Status: "processing"}
		}
		return errs.New(errs.NotReady, "upload failed and no recoverable blob remains")
	default: // uploading, assembling
		elapsed := time.Since(upload.UpdatedAt)
		if elapsed > config.AppConfig.AttachReadyWait {
			_ = setStatus(ctx, upload, model.StatusFailed)
			return errs.New(errs.NotReady, "upload stalled without progress")
		}
		return &NotReadyError{Status: "uploading", ProcessingTime: elapsed.Seconds()}
	}
}

// resolveOriginalImage finds the original variant for upload, falling
// back to the first available variant if absent, per §4.7 step 3. If
// none exist despite the upload being complete, the upload is
// transitioned to failed, matching that step's state transition.
func resolveOriginalImage(ctx context.Context, upload *model.Upload) (*model.Image, error) {
	var image model.Image
	err := repo.Db.WithContext(ctx).
		Where("upload_id = ? AND variant = ?", upload.ID, model.VariantOriginal).
		First(&image).Error
	if err == nil {
		return &image, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, errs.Wrap(errs.InternalIO, "load original image", err)
	}

	var fallback model.Image
	err = repo.Db.WithContext(ctx).
		Where("upload_id = ?", upload.ID).
		Order("id ASC").
		First(&fallback).Error
	if err == nil {
		log.Printf("warning: upload %s has no original image, binding variant %s", upload.UploadID, fallback.Variant)
		return &fallback, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, errs.Wrap(errs.InternalIO, "load fallback image", err)
	}

	_ = setStatus(ctx, upload, model.StatusFailed)
	return nil, errs.New(errs.InconsistentState, "upload is complete but has no images")
}
