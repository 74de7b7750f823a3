package dataset

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// CIFAR-10 binary layout: each record is one label byte followed by a
// 32x32 image stored as 1024 red, 1024 green then 1024 blue bytes.
const (
	CIFARChannels = 3
	CIFARHeight   = 32
	CIFARWidth    = 32
	CIFARClasses  = 10

	cifarImageBytes  = CIFARChannels * CIFARHeight * CIFARWidth
	cifarRecordBytes = 1 + cifarImageBytes

	cifarArchive = "cifar-10-binary.tar.gz"
	cifarSubdir  = "cifar-10-batches-bin"
)

var (
	cifarTrainFiles = []string{
		"data_batch_1.bin",
		"data_batch_2.bin",
		"data_batch_3.bin",
		"data_batch_4.bin",
		"data_batch_5.bin",
	}
	cifarTestFiles = []string{"test_batch.bin"}
)

// DefaultCIFARSources lists mirrors tried in order when the archive is missing.
var DefaultCIFARSources = []string{
	"https://www.cs.toronto.edu/~kriz/cifar-10-binary.tar.gz",
}

// CIFAROptions configures LoadCIFAR10.
type CIFAROptions struct {
	// Dir caches the archive and the extracted batch files.
	Dir string
	// Sources overrides DefaultCIFARSources.
	Sources []string
	// Client performs downloads. It defaults to a client with a generous timeout.
	Client *http.Client
	// Logger receives progress messages; nil discards them.
	Logger *log.Logger
}

// DefaultCIFARDir returns an OS-specific cache directory for CIFAR-10.
func DefaultCIFARDir() string {
	return filepath.Join(os.TempDir(), "cifarnet", "cifar10")
}

// LoadCIFAR10 returns the 50000-image training split and the 10000-image test
// split, downloading and extracting the binary archive into opts.Dir first
// when the batch files are not there yet.
func LoadCIFAR10(opts CIFAROptions) (train, test *Dataset, err error) {
	if opts.Dir == "" {
		opts.Dir = DefaultCIFARDir()
	}
	if len(opts.Sources) == 0 {
		opts.Sources = DefaultCIFARSources
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Minute}
	}
	batchDir := filepath.Join(opts.Dir, cifarSubdir)
	if !haveFiles(batchDir, append(append([]string(nil), cifarTrainFiles...), cifarTestFiles...)) {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, nil, errors.Wrap(err, "create cache dir")
		}
		archive, err := downloadIfMissing(opts, cifarArchive)
		if err != nil {
			return nil, nil, err
		}
		if err := extractBatches(archive, batchDir, opts.Logger); err != nil {
			return nil, nil, err
		}
	}
	train, err = readCIFARFiles(batchDir, cifarTrainFiles)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load cifar10 train split")
	}
	test, err = readCIFARFiles(batchDir, cifarTestFiles)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load cifar10 test split")
	}
	return train, test, nil
}

// ReadCIFAR10 parses binary CIFAR-10 records from r until EOF.
func ReadCIFAR10(r io.Reader) (*Dataset, error) {
	var images []float64
	var labels []int
	record := make([]byte, cifarRecordBytes)
	br := bufio.NewReader(r)
	for {
		_, err := io.ReadFull(br, record)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return nil, errors.Errorf("truncated record after %d images", len(labels))
		}
		if err != nil {
			return nil, err
		}
		label := int(record[0])
		if label >= CIFARClasses {
			return nil, errors.Errorf("record %d has label %d", len(labels), label)
		}
		labels = append(labels, label)
		for _, b := range record[1:] {
			images = append(images, float64(b)/255.0)
		}
	}
	if len(labels) == 0 {
		return nil, errors.New("no records")
	}
	return New(images, labels, CIFARChannels, CIFARHeight, CIFARWidth)
}

func readCIFARFiles(dir string, names []string) (*Dataset, error) {
	var images []float64
	var labels []int
	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		part, err := ReadCIFAR10(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		images = append(images, part.images...)
		labels = append(labels, part.labels...)
	}
	return New(images, labels, CIFARChannels, CIFARHeight, CIFARWidth)
}

func haveFiles(dir string, names []string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

func downloadIfMissing(opts CIFAROptions, filename string) (string, error) {
	dst := filepath.Join(opts.Dir, filename)
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}
	var lastErr error
	for _, url := range opts.Sources {
		logf(opts.Logger, "downloading %s", url)
		if err := downloadFile(opts.Client, url, dst); err != nil {
			logf(opts.Logger, "failed %s: %v", url, err)
			lastErr = err
			continue
		}
		return dst, nil
	}
	return "", errors.Wrapf(lastErr, "download %s", filename)
}

func downloadFile(client *http.Client, url, dst string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %s", resp.Status)
	}
	return writeAtomic(dst, resp.Body)
}

// extractBatches copies the batch files out of the gzipped tarball into dir.
func extractBatches(archive, dir string, logger *log.Logger) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "open archive")
	}
	defer gz.Close()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	wanted := map[string]bool{}
	for _, name := range append(append([]string(nil), cifarTrainFiles...), cifarTestFiles...) {
		wanted[name] = true
	}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "read archive")
		}
		name := path.Base(hdr.Name)
		if hdr.Typeflag != tar.TypeReg || !wanted[name] {
			continue
		}
		logf(logger, "extracting %s", name)
		if err := writeAtomic(filepath.Join(dir, name), tr); err != nil {
			return errors.Wrapf(err, "extract %s", name)
		}
		delete(wanted, name)
	}
	if len(wanted) > 0 {
		return errors.Errorf("archive is missing %d batch files", len(wanted))
	}
	return nil
}

func writeAtomic(dst string, r io.Reader) error {
	tmpPath := dst + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func logf(logger *log.Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
