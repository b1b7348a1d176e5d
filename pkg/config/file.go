package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battwarn/battwarn/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		UpperThreshold:            ptr.To(80),
		LowerThreshold:            ptr.To(20),
		PollIntervalSeconds:       ptr.To(15.0),
		VoiceRepeatMinutes:        ptr.To(1.0),
		QuietHours:                ptr.To(""),
		QuietHoursDurationMinutes: ptr.To(480.0),
		AllowNonRootAccess:        ptr.To(false),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	UpperThreshold            *int     `json:"upperThreshold,omitempty"`
	LowerThreshold            *int     `json:"lowerThreshold,omitempty"`
	PollIntervalSeconds       *float64 `json:"pollIntervalSeconds,omitempty"`
	VoiceRepeatMinutes        *float64 `json:"voiceRepeatMinutes,omitempty"`
	QuietHours                *string  `json:"quietHours,omitempty"`
	QuietHoursDurationMinutes *float64 `json:"quietHoursDurationMinutes,omitempty"`
	AllowNonRootAccess        *bool    `json:"allowNonRootAccess,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		UpperThreshold:            ptr.To(c.UpperThreshold()),
		LowerThreshold:            ptr.To(c.LowerThreshold()),
		PollIntervalSeconds:       ptr.To(c.PollInterval().Seconds()),
		VoiceRepeatMinutes:        ptr.To(c.VoiceRepeatInterval().Minutes()),
		QuietHours:                ptr.To(c.QuietHours()),
		QuietHoursDurationMinutes: ptr.To(c.QuietHoursDuration().Minutes()),
		AllowNonRootAccess:        ptr.To(c.AllowNonRootAccess()),
	}

	return rawConfig, nil
}

func (f *File) UpperThreshold() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.UpperThreshold != nil {
		return *f.c.UpperThreshold
	}
	return *defaultFileConfig.UpperThreshold
}

func (f *File) LowerThreshold() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.LowerThreshold != nil {
		return *f.c.LowerThreshold
	}
	return *defaultFileConfig.LowerThreshold
}

func (f *File) PollInterval() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	seconds := *defaultFileConfig.PollIntervalSeconds
	if f.c.PollIntervalSeconds != nil {
		seconds = *f.c.PollIntervalSeconds
	}
	return time.Duration(seconds * float64(time.Second))
}

func (f *File) VoiceRepeatInterval() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	minutes := *defaultFileConfig.VoiceRepeatMinutes
	if f.c.VoiceRepeatMinutes != nil {
		minutes = *f.c.VoiceRepeatMinutes
	}
	return time.Duration(minutes * float64(time.Minute))
}

func (f *File) QuietHours() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.QuietHours != nil {
		return *f.c.QuietHours
	}
	return *defaultFileConfig.QuietHours
}

func (f *File) QuietHoursDuration() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	minutes := *defaultFileConfig.QuietHoursDurationMinutes
	if f.c.QuietHoursDurationMinutes != nil {
		minutes = *f.c.QuietHoursDurationMinutes
	}
	return time.Duration(minutes * float64(time.Minute))
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.AllowNonRootAccess != nil {
		return *f.c.AllowNonRootAccess
	}
	return *defaultFileConfig.AllowNonRootAccess
}

func (f *File) SetUpperThreshold(i int) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.UpperThreshold = &i
}

func (f *File) SetLowerThreshold(i int) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.LowerThreshold = &i
}

func (f *File) Validate() error {
	upper := f.UpperThreshold()
	lower := f.LowerThreshold()

	if upper < 0 || upper > 100 {
		return pkgerrors.Errorf("upper threshold must be between 0 and 100, got %d", upper)
	}
	if lower < 0 || lower > 100 {
		return pkgerrors.Errorf("lower threshold must be between 0 and 100, got %d", lower)
	}
	if lower >= upper {
		return pkgerrors.Errorf("lower threshold (%d) must be less than upper threshold (%d)", lower, upper)
	}
	if f.PollInterval() < time.Second {
		return pkgerrors.Errorf("poll interval must be at least 1 second, got %s", f.PollInterval())
	}
	if f.VoiceRepeatInterval() <= 0 {
		return pkgerrors.Errorf("voice repeat interval must be positive, got %s", f.VoiceRepeatInterval())
	}
	if f.QuietHours() != "" && f.QuietHoursDuration() <= 0 {
		return pkgerrors.Errorf("quiet hours duration must be positive, got %s", f.QuietHoursDuration())
	}

	return nil
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		// If the file is empty, return the empty config.
		// Do not make f.c a nil.
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

// Reload reads the file again into a scratch config and validates it
// before swapping it in. A bad file written while the daemon runs must
// not replace a good running config.
func (f *File) Reload() error {
	fresh := &File{
		filepath: f.filepath,
		mu:       &sync.RWMutex{},
	}
	if err := fresh.Load(); err != nil {
		return err
	}
	if err := fresh.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	f.c = fresh.c
	f.mu.Unlock()

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"upperThreshold":     f.UpperThreshold(),
		"lowerThreshold":     f.LowerThreshold(),
		"pollInterval":       f.PollInterval().String(),
		"voiceRepeat":        f.VoiceRepeatInterval().String(),
		"quietHours":         f.QuietHours(),
		"quietHoursDuration": f.QuietHoursDuration().String(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
	}
}
