package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/marrow-engine/marrow/engine/model"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v2"
)

// Packed archives bundle rigs and clips for shipping: a bbolt database with a
// manifest bucket listing the contained models and a models bucket holding
// one YAML record per model. The animpack tool writes them; LoadPack reads
// them back.
const (
	packManifestBucket = "manifest"
	packModelsBucket   = "models"
	packManifestKey    = "manifest"

	// PackVersion is the archive format version written by WritePack.
	PackVersion = 1

	// PackExtension is the conventional file extension for packed archives.
	PackExtension = ".pack"
)

// PackManifest is the archive table of contents.
type PackManifest struct {
	// Version is the archive format version.
	Version int `yaml:"version"`

	// Entries lists the models in the archive.
	Entries []PackEntry `yaml:"entries"`
}

// PackEntry identifies one model in the archive.
type PackEntry struct {
	// ID is a stable unique identifier assigned at pack time.
	ID string `yaml:"id"`

	// Name is the model name, which is also the record key.
	Name string `yaml:"name"`
}

type packedModel struct {
	Name       string            `yaml:"name"`
	Bones      []packedBone      `yaml:"bones"`
	Animations []packedAnimation `yaml:"animations"`
}

type packedBone struct {
	Name      string      `yaml:"name"`
	Parent    int         `yaml:"parent"`
	Offset    [16]float32 `yaml:"offset"`
	LocalBind [16]float32 `yaml:"local_bind"`
}

type packedAnimation struct {
	Name            string          `yaml:"name"`
	TicksPerSecond  int             `yaml:"ticks_per_second"`
	DurationInTicks int             `yaml:"duration_in_ticks"`
	Blending        bool            `yaml:"blending"`
	Channels        []packedChannel `yaml:"channels"`
}

type packedChannel struct {
	Bone     string          `yaml:"bone"`
	Scale    []packedVecKey  `yaml:"scale,omitempty"`
	Rotation []packedQuatKey `yaml:"rotation,omitempty"`
	Position []packedVecKey  `yaml:"position,omitempty"`
}

type packedVecKey struct {
	Tick  int        `yaml:"tick"`
	Value [3]float32 `yaml:"value"`
}

// packedQuatKey stores a quaternion as x, y, z, w.
type packedQuatKey struct {
	Tick  int        `yaml:"tick"`
	Value [4]float32 `yaml:"value"`
}

// WritePack creates a packed archive at path containing the given models.
// An existing archive is overwritten bucket by bucket.
//
// Parameters:
//   - path: the archive file path
//   - models: the models to pack
//
// Returns:
//   - error: error if the archive cannot be written
func WritePack(path string, models []*ImportedModel) error {
	db, err := bolt.Open(path, 0666, nil)
	if err != nil {
		return fmt.Errorf("failed to open pack %s: %w", path, err)
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		manifestBucket, err := tx.CreateBucketIfNotExists([]byte(packManifestBucket))
		if err != nil {
			return fmt.Errorf("failed to create manifest bucket: %w", err)
		}
		modelsBucket, err := tx.CreateBucketIfNotExists([]byte(packModelsBucket))
		if err != nil {
			return fmt.Errorf("failed to create models bucket: %w", err)
		}

		manifest := PackManifest{Version: PackVersion}
		for _, im := range models {
			record, err := packModel(im)
			if err != nil {
				return fmt.Errorf("model %q: %w", im.Name, err)
			}

			raw, err := yaml.Marshal(record)
			if err != nil {
				return fmt.Errorf("failed to encode model %q: %w", im.Name, err)
			}
			if err := modelsBucket.Put([]byte(im.Name), raw); err != nil {
				return fmt.Errorf("failed to store model %q: %w", im.Name, err)
			}

			manifest.Entries = append(manifest.Entries, PackEntry{
				ID:   uuid.New().String(),
				Name: im.Name,
			})
		}

		raw, err := yaml.Marshal(&manifest)
		if err != nil {
			return fmt.Errorf("failed to encode manifest: %w", err)
		}
		return manifestBucket.Put([]byte(packManifestKey), raw)
	})
}

// ReadPack opens a packed archive and decodes every model listed in its
// manifest.
//
// Parameters:
//   - path: the archive file path
//
// Returns:
//   - []*ImportedModel: the models in manifest order
//   - error: error if the archive cannot be read
func ReadPack(path string) ([]*ImportedModel, error) {
	db, err := bolt.Open(path, 0666, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open pack %s: %w", path, err)
	}
	defer db.Close()

	var models []*ImportedModel
	err = db.View(func(tx *bolt.Tx) error {
		manifestBucket := tx.Bucket([]byte(packManifestBucket))
		modelsBucket := tx.Bucket([]byte(packModelsBucket))
		if manifestBucket == nil || modelsBucket == nil {
			return fmt.Errorf("archive is missing pack buckets")
		}

		var manifest PackManifest
		if err := yaml.Unmarshal(manifestBucket.Get([]byte(packManifestKey)), &manifest); err != nil {
			return fmt.Errorf("failed to decode manifest: %w", err)
		}
		if manifest.Version != PackVersion {
			return fmt.Errorf("unsupported pack version %d", manifest.Version)
		}

		for _, entry := range manifest.Entries {
			raw := modelsBucket.Get([]byte(entry.Name))
			if raw == nil {
				return fmt.Errorf("manifest entry %q has no record", entry.Name)
			}

			var record packedModel
			if err := yaml.Unmarshal(raw, &record); err != nil {
				return fmt.Errorf("failed to decode model %q: %w", entry.Name, err)
			}

			im, err := unpackModel(&record)
			if err != nil {
				return fmt.Errorf("model %q: %w", entry.Name, err)
			}
			models = append(models, im)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return models, nil
}

// ReadManifest reads only the archive's table of contents.
//
// Parameters:
//   - path: the archive file path
//
// Returns:
//   - *PackManifest: the manifest
//   - error: error if the archive cannot be read
func ReadManifest(path string) (*PackManifest, error) {
	db, err := bolt.Open(path, 0666, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open pack %s: %w", path, err)
	}
	defer db.Close()

	var manifest PackManifest
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(packManifestBucket))
		if bucket == nil {
			return fmt.Errorf("archive is missing the manifest bucket")
		}
		return yaml.Unmarshal(bucket.Get([]byte(packManifestKey)), &manifest)
	})
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}

// packModel flattens an ImportedModel into its archive record.
func packModel(im *ImportedModel) (*packedModel, error) {
	if im.Skeleton == nil {
		return nil, fmt.Errorf("cannot pack a model without a skeleton")
	}

	record := &packedModel{Name: im.Name}

	for _, bone := range im.Skeleton.Bones() {
		record.Bones = append(record.Bones, packedBone{
			Name:      bone.Name,
			Parent:    bone.ParentIndex,
			Offset:    [16]float32(bone.Offset),
			LocalBind: [16]float32(bone.LocalBind),
		})
	}

	for _, anim := range im.Animations {
		pa := packedAnimation{
			Name:            anim.Name,
			TicksPerSecond:  anim.TicksPerSecond,
			DurationInTicks: anim.DurationInTicks,
			Blending:        anim.Blending,
		}
		for _, channel := range anim.Channels {
			pc := packedChannel{Bone: channel.BoneName}
			if channel.Scale != nil {
				pc.Scale = packVecKeys(channel.Scale)
			}
			if channel.Position != nil {
				pc.Position = packVecKeys(channel.Position)
			}
			if channel.Rotation != nil {
				for _, frame := range channel.Rotation.Frames {
					pc.Rotation = append(pc.Rotation, packedQuatKey{
						Tick:  frame.TickTime,
						Value: [4]float32{frame.Value.V[0], frame.Value.V[1], frame.Value.V[2], frame.Value.W},
					})
				}
			}
			pa.Channels = append(pa.Channels, pc)
		}
		record.Animations = append(record.Animations, pa)
	}

	return record, nil
}

func packVecKeys(component *model.ChannelComponent[mgl32.Vec3]) []packedVecKey {
	keys := make([]packedVecKey, len(component.Frames))
	for i, frame := range component.Frames {
		keys[i] = packedVecKey{Tick: frame.TickTime, Value: [3]float32(frame.Value)}
	}
	return keys
}

// unpackModel reconstructs an ImportedModel from its archive record.
func unpackModel(record *packedModel) (*ImportedModel, error) {
	bones := make([]model.Bone, len(record.Bones))
	for i, pb := range record.Bones {
		bones[i] = model.Bone{
			Name:        pb.Name,
			Index:       i,
			ParentIndex: pb.Parent,
			Offset:      mgl32.Mat4(pb.Offset),
			LocalBind:   mgl32.Mat4(pb.LocalBind),
		}
	}
	skeleton, err := model.NewSkeleton(bones)
	if err != nil {
		return nil, fmt.Errorf("invalid packed skeleton: %w", err)
	}

	animations := make([]*model.Animation, 0, len(record.Animations))
	for _, pa := range record.Animations {
		anim := &model.Animation{
			Name:            pa.Name,
			TicksPerSecond:  pa.TicksPerSecond,
			DurationInTicks: pa.DurationInTicks,
			Blending:        pa.Blending,
			Channels:        make(map[string]*model.BoneChannel, len(pa.Channels)),
		}
		for _, pc := range pa.Channels {
			channel := &model.BoneChannel{BoneName: pc.Bone}
			if len(pc.Scale) > 0 {
				channel.Scale = unpackVecKeys(pc.Scale)
			}
			if len(pc.Position) > 0 {
				channel.Position = unpackVecKeys(pc.Position)
			}
			if len(pc.Rotation) > 0 {
				frames := make([]model.Keyframe[mgl32.Quat], len(pc.Rotation))
				for i, key := range pc.Rotation {
					frames[i] = model.Keyframe[mgl32.Quat]{
						TickTime: key.Tick,
						Value:    mgl32.Quat{W: key.Value[3], V: mgl32.Vec3{key.Value[0], key.Value[1], key.Value[2]}},
					}
				}
				channel.Rotation = model.NewChannelComponent(frames)
			}
			anim.Channels[pc.Bone] = channel
		}
		animations = append(animations, anim)
	}

	return &ImportedModel{
		Name:       record.Name,
		Skeleton:   skeleton,
		Animations: animations,
	}, nil
}

func unpackVecKeys(keys []packedVecKey) *model.ChannelComponent[mgl32.Vec3] {
	frames := make([]model.Keyframe[mgl32.Vec3], len(keys))
	for i, key := range keys {
		frames[i] = model.Keyframe[mgl32.Vec3]{TickTime: key.Tick, Value: mgl32.Vec3(key.Value)}
	}
	return model.NewChannelComponent(frames)
}
