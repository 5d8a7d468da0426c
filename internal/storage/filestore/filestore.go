// Пакет filestore — операции с физическими файлами на диске.
// Оригиналы хранятся под сгенерированными UUID-именами в корне
// хранилища, thumbnail'ы — рядом, под детерминированными именами
// {fileId}_{width}.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore — управление физическими файлами на диске.
type FileStore struct {
	// root — корневая директория хранения файлов (FOLDER_PATH)
	root string
}

// New создаёт новый FileStore. Создаёт корневую директорию,
// если она не существует.
func New(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", root, err)
	}

	return &FileStore{root: root}, nil
}

// Save записывает данные из reader в новый файл со сгенерированным
// коллизионно-устойчивым именем (UUID v4). Возвращает абсолютный путь
// и размер записанных данных.
//
// Паттерн: temp файл → запись → fsync → atomic rename.
// При ошибке temp файл удаляется.
func (fs *FileStore) Save(reader io.Reader) (string, int64, error) {
	fullPath := filepath.Join(fs.root, uuid.New().String())

	size, err := fs.writeAtomic(fullPath, reader)
	if err != nil {
		return "", 0, err
	}
	return fullPath, size, nil
}

// WriteDerived записывает производный артефакт (thumbnail) по
// детерминированному пути {fileId}_{width}. Запись атомарна и
// идемпотентна: повторная запись перезаписывает артефакт целиком,
// частичное содержимое никогда не видно читателям.
func (fs *FileStore) WriteDerived(fileID string, width int, reader io.Reader) (string, error) {
	fullPath := fs.DerivedPath(fileID, width)

	if _, err := fs.writeAtomic(fullPath, reader); err != nil {
		return "", err
	}
	return fullPath, nil
}

// DerivedPath возвращает детерминированный путь thumbnail-варианта.
func (fs *FileStore) DerivedPath(fileID string, width int) string {
	return filepath.Join(fs.root, fmt.Sprintf("%s_%d", fileID, width))
}

// Open открывает файл для чтения по абсолютному пути.
// Вызывающий код обязан закрыть файл.
func (fs *FileStore) Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	return f, nil
}

// Exists проверяет существование файла.
func (fs *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Root возвращает путь к корневой директории хранилища.
func (fs *FileStore) Root() string {
	return fs.root
}

// IsNotExist проверяет, что ошибка чтения вызвана отсутствием файла.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// writeAtomic выполняет temp → запись → fsync → rename.
func (fs *FileStore) writeAtomic(fullPath string, reader io.Reader) (int64, error) {
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("ошибка записи данных: %w", err)
	}

	// fsync для гарантии записи на диск
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	// Атомарный rename
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return size, nil
}
